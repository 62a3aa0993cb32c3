//go:build linux && amd64

package jit

import "github.com/cryptonote-social/RandomX/pkg/rxtypes"

// emitFswapR swaps the two packed doubles of a single f/e-bank register in
// place. dst selects the bank directly (0-3 -> f, 4-7 -> e) rather than
// being reduced mod 4 first, since the two banks share the 0-7 index space
// for this opcode alone.
func emitFswapR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst8())
	reg := bankReg(dst)
	c.asm.ShufpdXmmXmmImm8(reg, reg, 1)
}

// bankReg maps a raw 0-7 dst field to the f bank (0-3) or e bank (4-7),
// the register-group split emitFswapR uses.
func bankReg(dst int) Xmm {
	if dst < 4 {
		return fReg[dst]
	}
	return eReg[dst-4]
}

// emitFaddR: F[dst%4] += A[src%4] (packed double add).
func emitFaddR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst) % 4
	src := int(instr.Src) % 4
	c.asm.AddpdXmmXmm(fReg[dst], aReg[src])
}

// emitFaddM: F[dst%4] += cvtdq2pd(scratchpad[(src+imm32)&mask]).
func emitFaddM(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst) % 4
	src := int(instr.Src8())
	emitFpMemOperand(c, src, instr.Imm32, instr.ModMem())
	c.asm.AddpdXmmXmm(fReg[dst], scratchXmm)
}

// emitFsubR: F[dst%4] -= A[src%4].
func emitFsubR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst) % 4
	src := int(instr.Src) % 4
	c.asm.SubpdXmmXmm(fReg[dst], aReg[src])
}

// emitFsubM: F[dst%4] -= cvtdq2pd(scratchpad[(src+imm32)&mask]).
func emitFsubM(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst) % 4
	src := int(instr.Src8())
	emitFpMemOperand(c, src, instr.Imm32, instr.ModMem())
	c.asm.SubpdXmmXmm(fReg[dst], scratchXmm)
}

// emitFscalR: F[dst%4] XOR= the sign-flip constant in the xmm-constants
// region, negating both packed doubles' sign bits without touching their
// magnitude.
func emitFscalR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst) % 4
	c.asm.MovRegImm64(SecondaryReg, c.constAddr(0))
	c.asm.XorpdXmmMem(fReg[dst], SecondaryReg, 0)
}

// emitFmulR: E[dst%4] *= A[src%4].
func emitFmulR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst) % 4
	src := int(instr.Src) % 4
	c.asm.MulpdXmmXmm(eReg[dst], aReg[src])
}

// emitFdivM: E[dst%4] /= (cvtdq2pd(scratchpad[...]) masked into a valid
// divisor exponent range). The fixed AND-mask first clears the
// exponent/sign bits the eMask OR-mask doesn't own, then the
// per-program OR-mask sets the exponent into a range that can't produce
// zero, infinities, subnormals, or NaN.
func emitFdivM(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst) % 4
	src := int(instr.Src8())
	emitFpMemOperand(c, src, instr.Imm32, instr.ModMem())
	c.asm.MovRegImm64(SecondaryReg, c.constAddr(constEAndMaskOffset))
	c.asm.AndpdXmmMem(scratchXmm, SecondaryReg, 0)
	c.asm.MovRegImm64(SecondaryReg, c.constAddr(constEOrMaskOffset))
	c.asm.OrpdXmmMem(scratchXmm, SecondaryReg, 0)
	c.asm.DivpdXmmXmm(eReg[dst], scratchXmm)
}

// emitFsqrtR: E[dst%4] = sqrt(E[dst%4]).
func emitFsqrtR(c *Compiler, instr rxtypes.Instruction, i int) {
	dst := int(instr.Dst) % 4
	c.asm.SqrtpdXmmXmm(eReg[dst], eReg[dst])
}

// emitFpMemOperand computes the scratchpad address for an M-form
// floating-point opcode from integer register src and loads the two
// int32s there into scratchXmm as packed doubles.
func emitFpMemOperand(c *Compiler, src int, imm32 int32, modMem byte) {
	emitAddressReg(c.asm, intReg[src], AccumReg, imm32, modMem)
	c.asm.AddRegReg(AccumReg, RSI)
	c.asm.Cvtdq2pdXmmMem(scratchXmm, AccumReg, 0)
}
