//go:build linux && amd64

package jit

import "github.com/cryptonote-social/RandomX/pkg/rxtypes"

// fragments holds the twelve precompiled regions spec.md's external
// interface describes, built programmatically with the Assembler
// primitives rather than supplied as an externally linked binary blob
// (spec.md §9's Design Notes explicitly permit either mechanism; only
// the byte content at each region matters to a caller). Region content
// here follows this repository's own register-allocation convention
// (see regs.go) and is not bit-for-bit compatible with any upstream
// build of the reference JIT — that compatibility is out of scope.
type fragments struct {
	prologue             []byte
	loopLoad             []byte
	epilogue             []byte
	readDatasetFull      []byte
	readDatasetLightInit []byte
	readDatasetLightFin  []byte
	loopStore            []byte
	sshashInit           []byte
	sshashLoad           []byte
	sshashPrefetch       []byte
	xmmConstants         []byte // 64 bytes; see buildXmmConstants for the layout
	datasetInit          []byte
}

const loopCounterInit = rxtypes.RandomxCacheAccesses

func defaultFragments() *fragments {
	return &fragments{
		prologue:             buildPrologue(),
		loopLoad:             buildLoopLoad(),
		epilogue:             buildEpilogue(),
		readDatasetFull:      buildReadDatasetFull(),
		readDatasetLightInit: buildReadDatasetLightInit(),
		readDatasetLightFin:  buildReadDatasetLightFin(),
		loopStore:            buildLoopStore(),
		sshashInit:           buildSshashInit(),
		sshashLoad:           buildSshashLoad(),
		sshashPrefetch:       buildSshashPrefetch(),
		xmmConstants:         buildXmmConstants(),
		datasetInit:          buildDatasetInit(),
	}
}

func scratch(size int) *Assembler { return NewAssembler(make([]byte, size)) }

// buildPrologue loads the eight integer registers and the twelve
// packed-double registers from the RegisterFile pointed to by rdi (the
// program function's first argument), and sets rbx to the loop counter.
// rsi (scratchpad pointer) and rdx (dataset pointer) arrive already in
// place per the SysV calling convention.
func buildPrologue() []byte {
	a := scratch(256)
	a.Push(RBX)
	a.Push(RBP)
	a.Push(R12)
	a.Push(R13)
	a.Push(R14)
	a.Push(R15)
	for i, r := range intReg {
		a.MovRegMem64(r, RDI, int32(rxtypes.RegFileROffset+8*i))
	}
	for i, x := range fReg {
		a.MovupdXmmMem(x, RDI, int32(rxtypes.RegFileFOffset+16*i))
	}
	for i, x := range eReg {
		a.MovupdXmmMem(x, RDI, int32(rxtypes.RegFileEOffset+16*i))
	}
	for i, x := range aReg {
		a.MovupdXmmMem(x, RDI, int32(rxtypes.RegFileAOffset+16*i))
	}
	a.MovRegImm32SignExt(RBX, loopCounterInit)
	return a.Bytes()
}

// buildLoopLoad marks the top of the per-iteration loop; the reference
// keeps a small fixed sequence here to reload any state clobbered by the
// dataset read of the previous iteration. This implementation's dataset
// read only touches rax/rbx/rcx, none of which need reloading, so the
// fragment is a single alignment NOP the loop-back jump lands on.
func buildLoopLoad() []byte {
	a := scratch(8)
	a.Nop()
	return a.Bytes()
}

// buildEpilogue stores the VM registers back to the RegisterFile and
// restores callee-saved registers.
func buildEpilogue() []byte {
	a := scratch(256)
	for i, r := range intReg {
		a.MovMemReg64(RDI, int32(rxtypes.RegFileROffset+8*i), r)
	}
	for i, x := range fReg {
		a.MovupdMemXmm(RDI, int32(rxtypes.RegFileFOffset+16*i), x)
	}
	for i, x := range eReg {
		a.MovupdMemXmm(RDI, int32(rxtypes.RegFileEOffset+16*i), x)
	}
	for i, x := range aReg {
		a.MovupdMemXmm(RDI, int32(rxtypes.RegFileAOffset+16*i), x)
	}
	a.Pop(R15)
	a.Pop(R14)
	a.Pop(R13)
	a.Pop(R12)
	a.Pop(RBP)
	a.Pop(RBX)
	a.Ret()
	return a.Bytes()
}

// buildReadDatasetFull loads one 64-byte dataset cache line addressed by
// rax (already computed by the caller) into r8..r15 via XOR-accumulation,
// the standard RandomX dataset-mixing step.
func buildReadDatasetFull() []byte {
	a := scratch(128)
	mask := ^uint32(rxtypes.CacheLineSize - 1)
	a.AndRegImm32(RAX, int32(mask))
	a.AddRegReg(RAX, RDX)
	for i, r := range intReg {
		a.MovRegMem64(SecondaryReg, RAX, int32(8*i))
		a.XorRegReg(r, SecondaryReg)
	}
	return a.Bytes()
}

// buildReadDatasetLightInit prepares rbx to hold the dataset item index
// before the caller adds datasetOffset/CacheLineSize and calls into the
// SuperscalarHash routine.
func buildReadDatasetLightInit() []byte {
	a := scratch(16)
	a.MovRegReg32(RBX, RAX)
	return a.Bytes()
}

// buildReadDatasetLightFin mixes the dataset item SuperscalarHash just
// computed (left in r8..r15 by the SuperscalarHash routine's own
// epilogue-less return, per this implementation's convention that the
// SuperscalarHash result lands directly in the VM integer registers)
// back into the VM state; light mode's dataset item IS the VM registers
// after the call, so this fragment is deliberately empty aside from a
// single instruction cache barrier NOP.
func buildReadDatasetLightFin() []byte {
	a := scratch(8)
	a.Nop()
	return a.Bytes()
}

// buildLoopStore mixes rax (MOV rax, readReg0; XOR rax, readReg1, emitted
// dynamically by the Program Assembler before this fragment) into every
// integer register, the final per-iteration scratchpad write-back mix.
func buildLoopStore() []byte {
	a := scratch(64)
	for _, r := range intReg {
		a.XorRegReg(r, RAX)
	}
	return a.Bytes()
}

// buildSshashInit is copied to SuperScalarHashOffset at the start of
// GenerateSuperscalarHash; it loads the eight superscalar working
// registers from the dataset seed the caller placed in rdi.
func buildSshashInit() []byte {
	a := scratch(128)
	for i, r := range intReg {
		a.MovRegMem64(r, RDI, int32(8*i))
	}
	return a.Bytes()
}

// buildSshashLoad is appended after each superscalar program's
// instruction stream; it is a fixed placeholder for the reference's
// "load next cache line" step, a no-op here since the synthetic
// SuperscalarPrograms this repository generates don't model an external
// cache read.
func buildSshashLoad() []byte {
	a := scratch(8)
	a.Nop()
	return a.Bytes()
}

// buildSshashPrefetch is emitted after "MOV rax, <addressRegister>"
// between chained superscalar programs; a placeholder prefetch hint.
func buildSshashPrefetch() []byte {
	a := scratch(8)
	// prefetcht0 [rax]: 0F 18 /1
	a.emit(0x0F, 0x18, modRM(0x00, 1, RAX))
	return a.Bytes()
}

// Byte offsets within the xmm-constants region buildXmmConstants lays
// out; constEOrMaskOffset doubles as the eMask slot patchEMask
// overwrites per compilation.
const (
	constSignMaskOffset      = 0
	constEAndMaskOffset      = 16
	constEOrMaskOffset       = 32
	constRoundingTableOffset = 48
)

// buildXmmConstants lays out the 64-byte xmm-constants region: bytes
// 0-15 are the FSCAL_R sign-mask constant (flips the sign bit of both
// packed doubles); bytes 16-31 are the fixed FDIV_M AND-mask
// (0x00ffffffffffffff repeated twice), which clears a divisor's
// exponent down to a range that excludes Inf/NaN before the per-program
// OR-mask sets it back into a nonzero, non-subnormal range; bytes 32-47
// are that OR-mask, the eMask slot patchEMask overwrites per
// compilation; and bytes 48-63 are a 4-entry table of MXCSR control
// words CFROUND indexes into by rounding mode (round-nearest,
// round-down, round-up, round-toward-zero).
func buildXmmConstants() []byte {
	buf := make([]byte, 64)
	// sign-mask: 0x8000000000000000 repeated twice (big-endian bit
	// pattern, stored little-endian per byte as RandomX's own constant is)
	for i := 0; i < 2; i++ {
		buf[i*8+7] = 0x80
	}
	// and-mask: 0x00ffffffffffffff repeated twice
	for i := 0; i < 2; i++ {
		for b := 0; b < 7; b++ {
			buf[constEAndMaskOffset+i*8+b] = 0xff
		}
	}
	const exceptionMask = 0x1F80
	for rc := 0; rc < 4; rc++ {
		word := uint32(exceptionMask | (rc << 13))
		off := constRoundingTableOffset + rc*4
		buf[off] = byte(word)
		buf[off+1] = byte(word >> 8)
		buf[off+2] = byte(word >> 16)
		buf[off+3] = byte(word >> 24)
	}
	return buf
}

// buildDatasetInit is the alternative entry-point fragment memcpy'd to
// offset 0 by GenerateDatasetInitCode, overwriting the prologue. It
// receives a dataset range in rdi/rsi/rdx and returns without touching
// the VM register-file ABI at all, matching spec.md §4.1's "the
// dataset-init entry is also the start... overwriting the prologue".
func buildDatasetInit() []byte {
	a := scratch(16)
	a.Ret()
	return a.Bytes()
}
