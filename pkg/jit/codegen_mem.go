//go:build linux && amd64

package jit

import "github.com/cryptonote-social/RandomX/pkg/rxtypes"

// emitIstore writes src to the scratchpad at (dst + imm32) & mask. The
// mask is the L1/L2 table selected by modMem when modCond falls below
// StoreL3Condition, and the L3 mask unconditionally otherwise — this is
// the one opcode whose mask selection depends on a second mod field
// rather than solely on modMem.
func emitIstore(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst8())
	src := int(instr.Src8())

	var mask int32
	if instr.ModCond() < rxtypes.StoreL3Condition {
		mask = int32(rxtypes.ScratchpadMaskFor(instr.ModMem()))
	} else {
		mask = int32(rxtypes.ScratchpadL3Mask)
	}

	c.asm.LeaRegMem32(AccumReg, intReg[dst], instr.Imm32)
	c.asm.AndRegImm32Reg32(AccumReg, mask)
	c.asm.AddRegReg(AccumReg, RSI)
	c.asm.MovMemReg64(AccumReg, 0, intReg[src])
}
