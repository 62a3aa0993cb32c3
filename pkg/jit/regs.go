//go:build linux && amd64

package jit

// Register allocation convention for the compiled program body, chosen
// to keep rax/rcx free as the address generator's accumulator and
// secondary temporary, per the Address Generator contract:
//
//	r8..r15   VM integer registers r0..r7
//	xmm0..3   VM "f" packed-double registers
//	xmm4..7   VM "e" packed-double registers
//	xmm8..11  VM "a" packed-double registers (read-only across a program)
//	rax       address generator accumulator / general scratch
//	rcx       address generator secondary temporary (high-multiply memory forms)
//	rsi       scratchpad base pointer
//	rdx       dataset/cache base pointer
//	rbx       loop counter (RANDOMX_CACHE_ACCESSES) / dataset item accumulator
//	rdi       VM register-file pointer (prologue/epilogue only)
//	rbp       reserved (unused by the emitters, available to fragments)
var intReg = [8]Reg{R8, R9, R10, R11, R12, R13, R14, R15}

// fReg/eReg/aReg map a VM register index (0-3, already reduced mod 4 by
// callers, or split from 0-7 by bankReg) into the packed-double bank the
// opcode addresses.
var fReg = [4]Xmm{XMM0, XMM1, XMM2, XMM3}
var eReg = [4]Xmm{XMM4, XMM5, XMM6, XMM7}
var aReg = [4]Xmm{XMM8, XMM9, XMM10, XMM11}

// scratchXmm is a temporary xmm register the floating-point M-form and
// CFROUND-adjacent emitters use for staging a value before combining it
// with an f/e-bank destination. It is never a program-visible register.
const scratchXmm = XMM12

// AccumReg and SecondaryReg name the two general-purpose scratch
// registers the Address Generator and several per-opcode emitters share.
const (
	AccumReg    = RAX
	SecondaryReg = RCX
)
