//go:build linux && amd64

package jit

import "github.com/cryptonote-social/RandomX/pkg/rxtypes"

// emitImulhR: dst = high 64 bits of unsigned dst*src.
func emitImulhR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst8())
	src := int(instr.Src8())
	c.markInt(dst, i)
	dstReg := intReg[dst]
	c.asm.MovRegReg(AccumReg, dstReg)
	c.asm.Mul(intReg[src])
	c.asm.MovRegReg(dstReg, RDX)
}

// emitImulhM: dst = high 64 bits of unsigned dst*[scratchpad address].
func emitImulhM(c *Compiler, instr rxtypes.Instruction, i int) {
	emitMulhMForm(c, instr, i, (*Assembler).Mul)
}

// emitIsmulhR: dst = high 64 bits of signed dst*src.
func emitIsmulhR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst8())
	src := int(instr.Src8())
	c.markInt(dst, i)
	dstReg := intReg[dst]
	c.asm.MovRegReg(AccumReg, dstReg)
	c.asm.IMul1(intReg[src])
	c.asm.MovRegReg(dstReg, RDX)
}

// emitIsmulhM: dst = high 64 bits of signed dst*[scratchpad address].
func emitIsmulhM(c *Compiler, instr rxtypes.Instruction, i int) {
	emitMulhMForm(c, instr, i, (*Assembler).IMul1)
}

// emitMulhMForm implements the shared IMULH_M/ISMULH_M shape. If
// src != dst, the address generator's secondary temporary (rcx) is used
// to compute the address so rax stays free to receive dst before the
// multiply; if src == dst, the simplified pre-masked-immediate form
// against [rsi+imm] is used instead.
func emitMulhMForm(c *Compiler, instr rxtypes.Instruction, i int, mulOp func(*Assembler, Reg)) {
	dst := int(instr.Dst8())
	src := int(instr.Src8())
	c.markInt(dst, i)
	dstReg := intReg[dst]
	if src != dst {
		emitAddressReg(c.asm, intReg[src], SecondaryReg, instr.Imm32, instr.ModMem())
		c.asm.AddRegReg(SecondaryReg, RSI)
		c.asm.MovRegMem64(SecondaryReg, SecondaryReg, 0)
	} else {
		c.asm.MovRegMem64(SecondaryReg, RSI, maskedL3Imm(instr.Imm32))
	}
	c.asm.MovRegReg(AccumReg, dstReg)
	mulOp(c.asm, SecondaryReg)
	c.asm.MovRegReg(dstReg, RDX)
}

// emitImulRcp: if imm32 is 0 or a power of two, this emitter writes no
// bytes and does not mark dst modified — one of the two true elision
// opcodes. Otherwise it loads the 64-bit reciprocal of imm32 into rax
// and multiplies dst by it.
func emitImulRcp(c *Compiler, instr rxtypes.Instruction, i int) {
	if isPowerOfTwoOrZero(uint32(instr.Imm32)) {
		return
	}
	dst := int(instr.Dst8())
	c.markInt(dst, i)
	dstReg := intReg[dst]
	rcp := rxtypes.Reciprocal(uint32(instr.Imm32))
	c.asm.MovRegImm64(AccumReg, rcp)
	c.asm.IMulRegReg(dstReg, AccumReg)
}
