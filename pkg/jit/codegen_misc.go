//go:build linux && amd64

package jit

import "github.com/cryptonote-social/RandomX/pkg/rxtypes"

// emitIswapR exchanges dst and src. When src == dst the exchange is a
// true no-op, elided entirely with neither register marked modified;
// otherwise both are marked modified at this instruction index.
func emitIswapR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst8())
	src := int(instr.Src8())
	if src == dst {
		return
	}
	c.markInt(dst, i)
	c.markInt(src, i)
	c.asm.XchgRegReg(intReg[dst], intReg[src])
}

// emitNop emits a single-byte NOP and updates no state; used both for the
// real NOP opcode and as the compiler's fallback for any Opcode value the
// dispatch table has no emitter for.
func emitNop(c *Compiler, instr rxtypes.Instruction, i int) {
	c.asm.Nop()
}

// emitCfround loads the FPU rounding mode from src into MXCSR. K rotates
// the two bits of src that imm32 selects down to bit positions 2-3; eax
// is then masked with 0x0C, giving a byte offset at the 4-byte stride of
// the rounding-word table before LDMXCSR reads through it.
func emitCfround(c *Compiler, instr rxtypes.Instruction, i int) {
	src := int(instr.Src8())
	c.asm.MovRegReg(AccumReg, intReg[src])
	k := byte((uint32(instr.Imm32)-2)&63) & 63
	if k != 0 {
		c.asm.RorRegImm8(AccumReg, k)
	}
	c.asm.AndRegImm32Reg32(AccumReg, 0x0C)
	c.asm.MovRegImm64(SecondaryReg, c.roundingTableAddr())
	c.asm.AddRegReg(SecondaryReg, AccumReg)
	c.asm.Ldmxcsr(SecondaryReg, 0)
}
