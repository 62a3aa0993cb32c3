//go:build linux && amd64

package jit

import "github.com/cryptonote-social/RandomX/pkg/rxtypes"

// GenerateSuperscalarHash compiles N superscalar programs, chained
// back-to-back in one pass, into the SuperscalarHash region of the code
// buffer. The compiled routine reads its eight-register seed from
// [rdi], runs each program in turn against r8..r15, and returns with
// the final dataset item left in those same registers —
// GenerateProgramLight's caller convention treats the call as
// replacing, not mixing into, the VM's integer registers, so no
// separate output buffer is needed.
//
// Between consecutive programs (but not after the last one) the
// routine emits "MOV rax, <addressRegister>" plus a prefetch hint and
// pads to the next 16-byte boundary, mirroring the way the reference
// threads dataset-item derivation across N chained programs rather
// than compiling each in isolation.
func (c *Compiler) GenerateSuperscalarHash(progs []*rxtypes.SuperscalarProgram, cache rxtypes.ReciprocalCache) error {
	if !c.buf.IsWritable() {
		if err := c.buf.MakeWritable(); err != nil {
			return err
		}
	}

	region := c.buf.SuperscalarRegion()
	c.asm = NewAssembler(region)
	asm := c.asm
	asm.emit(c.frag.sshashInit...)

	for j, prog := range progs {
		for _, instr := range prog.Instructions {
			emitSuperscalarInstruction(asm, instr, cache)
		}
		asm.emit(c.frag.sshashLoad...)

		if j < len(progs)-1 {
			asm.MovRegReg(AccumReg, intReg[prog.AddressRegister%8])
			asm.emit(c.frag.sshashPrefetch...)
			alignTo16(asm)
		}
	}

	asm.Ret()

	return nil
}

// alignTo16 pads the assembler's write cursor to the next 16-byte
// boundary with single-byte NOPs, in chunks capped at 9 bytes each.
// Upstream pads with variable-length NOP encodings sized by a nopSize
// value that's declared const then reassigned — a bug. This repository
// sidesteps it rather than reproducing it: since correctness only
// depends on the padding's total length, not on using fewer, longer NOP
// instructions, chunking plain single-byte NOPs at the same 9-byte cap
// gets the alignment right without porting the multi-byte NOP table.
func alignTo16(asm *Assembler) {
	pad := (16 - asm.Offset()%16) % 16
	for pad > 0 {
		chunk := pad
		if chunk > 9 {
			chunk = 9
		}
		for i := 0; i < chunk; i++ {
			asm.Nop()
		}
		pad -= chunk
	}
}

// emitSuperscalarInstruction dispatches one superscalar instruction. src
// and dst are already 0-7 register indices; IADD_C7/C8/C9 and
// IXOR_C7/C8/C9 differ only in the byte width the reference would give
// their immediate on the wire and are functionally identical once
// decoded into Imm32, so they share one emission path per operation.
func emitSuperscalarInstruction(asm *Assembler, instr rxtypes.SuperscalarInstruction, cache rxtypes.ReciprocalCache) {
	dst := intReg[instr.Dst%8]
	src := intReg[instr.Src%8]

	switch instr.Op {
	case rxtypes.SsISUB_R:
		asm.SubRegReg(dst, src)
	case rxtypes.SsIXOR_R:
		asm.XorRegReg(dst, src)
	case rxtypes.SsIADD_RS:
		shift := instr.Mod % 4
		asm.LeaRegSIB(dst, dst, src, shift, 0)
	case rxtypes.SsIMUL_R:
		asm.IMulRegReg(dst, src)
	case rxtypes.SsIROR_C:
		asm.RorRegImm8(dst, byte(instr.Imm32)&63)
	case rxtypes.SsIADD_C7, rxtypes.SsIADD_C8, rxtypes.SsIADD_C9:
		asm.AddRegImm32(dst, instr.Imm32)
	case rxtypes.SsIXOR_C7, rxtypes.SsIXOR_C8, rxtypes.SsIXOR_C9:
		asm.XorRegImm32(dst, instr.Imm32)
	case rxtypes.SsIMULH_R:
		asm.MovRegReg(AccumReg, dst)
		asm.Mul(src)
		asm.MovRegReg(dst, RDX)
	case rxtypes.SsISMULH_R:
		asm.MovRegReg(AccumReg, dst)
		asm.IMul1(src)
		asm.MovRegReg(dst, RDX)
	case rxtypes.SsIMUL_RCP:
		rcp := cache[instr.ReciprocalIndex%len(cache)]
		asm.MovRegImm64(SecondaryReg, rcp)
		asm.IMulRegReg(dst, SecondaryReg)
	}
}
