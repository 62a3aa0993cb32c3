//go:build linux && amd64

package jit

import "github.com/cryptonote-social/RandomX/pkg/rxtypes"

// emitCbranch computes the loop-back target B from the branch tracker,
// adjusts dst by an immediate with the bit at the condition's test shift
// forced set and the bit below it cleared (guaranteeing the loop eventually terminates rather
// than spinning on a bit pattern TEST can never see change), tests the
// condition mask, and jumps back to B's recorded offset when the masked
// bits are all zero.
func emitCbranch(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst8())
	dstReg := intReg[dst]

	shift := instr.ModCond() + rxtypes.ConditionOffset
	setBit := int32(1) << shift
	imm := instr.Imm32 | setBit
	imm &^= setBit >> 1

	b := c.bt.target(dst, i)
	c.markInt(dst, i)

	c.asm.AddRegImm32(dstReg, imm)
	mask := int32(rxtypes.ConditionMask) << shift
	c.asm.TestRegImm32(dstReg, mask)

	target := c.bt.instructionOffsets[b]
	jzSite := c.asm.Offset()
	rel8 := int32(target) - int32(jzSite+2)
	if rel8 >= -128 && rel8 <= 127 {
		c.asm.Je(int8(rel8))
	} else {
		c.asm.JeNear(int32(target) - int32(jzSite+6))
	}
}
