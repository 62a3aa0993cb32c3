//go:build linux && amd64

package jit

import "github.com/cryptonote-social/RandomX/pkg/rxtypes"

// emitIrorR: if src != dst, dst = ROR(dst, src&63) with the shift count
// loaded through rcx; if src == dst, the shift count is fixed at compile
// time and a zero count elides the instruction entirely, though
// registerModifiedAt[dst] is still updated for the elided case.
func emitIrorR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst8())
	src := int(instr.Src8())
	c.markInt(dst, i)
	dstReg := intReg[dst]
	if src != dst {
		c.asm.MovRegReg(RCX, intReg[src])
		c.asm.RorRegCL(dstReg)
		return
	}
	shift := byte(instr.Imm32) & 63
	if shift == 0 {
		return
	}
	c.asm.RorRegImm8(dstReg, shift)
}

// emitIrolR: rotate-left counterpart of emitIrorR.
func emitIrolR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst8())
	src := int(instr.Src8())
	c.markInt(dst, i)
	dstReg := intReg[dst]
	if src != dst {
		c.asm.MovRegReg(RCX, intReg[src])
		c.asm.RolRegCL(dstReg)
		return
	}
	shift := byte(instr.Imm32) & 63
	if shift == 0 {
		return
	}
	c.asm.RolRegImm8(dstReg, shift)
}
