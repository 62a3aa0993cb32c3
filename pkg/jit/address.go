//go:build linux && amd64

package jit

import "github.com/cryptonote-social/RandomX/pkg/rxtypes"

// emitAddressReg computes (src_low32 + imm32) & mask into dstTemp, where
// mask is selected from the four-entry scratchpad mask table by modMem.
// This is the general Address Generator form used whenever an M-form
// opcode has src != dst.
func emitAddressReg(a *Assembler, src, dstTemp Reg, imm32 int32, modMem byte) {
	mask := int32(rxtypes.ScratchpadMaskFor(modMem))
	a.LeaRegMem32(dstTemp, src, imm32)
	a.AndRegImm32Reg32(dstTemp, mask)
}

// maskedL3Imm returns imm32 & ScratchpadL3Mask, computed at emission
// time with no register input. This is the simplified form M-form
// opcodes fold into when src == dst: the immediate is pre-masked and
// used as the displacement from rsi rather than emitting a LEA/AND pair.
func maskedL3Imm(imm32 int32) int32 {
	return imm32 & int32(rxtypes.ScratchpadL3Mask)
}
