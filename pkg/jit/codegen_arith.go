//go:build linux && amd64

package jit

import "github.com/cryptonote-social/RandomX/pkg/rxtypes"

// emitIaddRS: dst = dst + (src << modShift), with the instruction's
// displacement folded in when dst is register 5 (the reference reserves
// this destination index because bare base+index LEA forms can't
// address r13/rbp without an explicit disp8(0), so that slot always
// carries an immediate displacement instead).
func emitIaddRS(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst8())
	src := int(instr.Src8())
	c.markInt(dst, i)
	dstReg, srcReg := intReg[dst], intReg[src]
	scale := instr.ModShift()
	if dst == rxtypes.RegisterNeedsDisplacement {
		c.asm.LeaRegSIB(dstReg, dstReg, srcReg, scale, instr.Imm32)
	} else {
		c.asm.LeaRegSIB(dstReg, dstReg, srcReg, scale, 0)
	}
}

// emitIaddM: dst += [scratchpad address]
func emitIaddM(c *Compiler, instr rxtypes.Instruction, i int) {
	emitIntMForm(c, instr, i, (*Assembler).AddRegReg)
}

// emitIsubR: if src != dst, dst -= src; if src == dst, dst -= imm32.
func emitIsubR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst8())
	src := int(instr.Src8())
	c.markInt(dst, i)
	dstReg := intReg[dst]
	if src != dst {
		c.asm.SubRegReg(dstReg, intReg[src])
	} else {
		c.asm.SubRegImm32(dstReg, instr.Imm32)
	}
}

// emitIsubM: dst -= [scratchpad address]
func emitIsubM(c *Compiler, instr rxtypes.Instruction, i int) {
	emitIntMForm(c, instr, i, (*Assembler).SubRegReg)
}

// emitImulR: if src != dst, dst *= src; if src == dst, dst *= imm32
// (3-operand imul against the instruction's literal, matching the VM
// semantics that self-ops act on the literal instead of the register).
func emitImulR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst8())
	src := int(instr.Src8())
	c.markInt(dst, i)
	dstReg := intReg[dst]
	if src != dst {
		c.asm.IMulRegReg(dstReg, intReg[src])
	} else {
		c.asm.IMulRegRegImm32(dstReg, dstReg, instr.Imm32)
	}
}

// emitImulM: dst *= [scratchpad address]
func emitImulM(c *Compiler, instr rxtypes.Instruction, i int) {
	emitIntMForm(c, instr, i, (*Assembler).IMulRegReg)
}

// emitInegR: dst = -dst
func emitInegR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst8())
	c.markInt(dst, i)
	c.asm.NegReg(intReg[dst])
}

// emitIxorR: if src != dst, dst ^= src; if src == dst, dst ^= imm32.
func emitIxorR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst8())
	src := int(instr.Src8())
	c.markInt(dst, i)
	dstReg := intReg[dst]
	if src != dst {
		c.asm.XorRegReg(dstReg, intReg[src])
	} else {
		c.asm.XorRegImm32(dstReg, instr.Imm32)
	}
}

// emitIxorM: dst ^= [scratchpad address]
func emitIxorM(c *Compiler, instr rxtypes.Instruction, i int) {
	emitIntMForm(c, instr, i, (*Assembler).XorRegReg)
}

// emitIntMForm implements the shared IADD_M/ISUB_M/IMUL_M/IXOR_M shape:
// if src != dst, compute the scratchpad address into rax and load the
// qword at [rsi+rax] into the secondary register; if src == dst, load
// the qword at [rsi + imm32&L3mask] instead (the simplified
// single-register-indexed form the address generator folds M-form
// self-ops into). Either way the loaded value is combined with dst via
// regOp.
func emitIntMForm(c *Compiler, instr rxtypes.Instruction, i int, regOp func(*Assembler, Reg, Reg)) {
	dst := int(instr.Dst8())
	src := int(instr.Src8())
	c.markInt(dst, i)
	dstReg := intReg[dst]
	if src != dst {
		emitAddressReg(c.asm, intReg[src], AccumReg, instr.Imm32, instr.ModMem())
		c.asm.AddRegReg(AccumReg, RSI)
		c.asm.MovRegMem64(SecondaryReg, AccumReg, 0)
	} else {
		c.asm.MovRegMem64(SecondaryReg, RSI, maskedL3Imm(instr.Imm32))
	}
	regOp(c.asm, dstReg, SecondaryReg)
}
