//go:build linux && amd64

package jit

import (
	"github.com/cryptonote-social/RandomX/pkg/rxtypes"
)

// emitterFunc is one opcode's emitter: consumes the decoded instruction
// and its index in the program, writes x86-64 bytes to c.asm, and
// updates c.bt as required by that opcode's semantics.
type emitterFunc func(c *Compiler, instr rxtypes.Instruction, i int)

// dispatchTable maps a decoded rxtypes.Opcode (Instruction.Op) to its
// emitter. Raw RandomX opcode bytes are decoded into Opcode values with
// rxtypes.BuildDispatchTable before a Program is built (see
// cmd/rxjitgen), so the weight expansion is not applied a second time
// here.
var dispatchTable [256]emitterFunc

func init() {
	emitters := map[rxtypes.Opcode]emitterFunc{
		rxtypes.IADD_RS:  emitIaddRS,
		rxtypes.IADD_M:   emitIaddM,
		rxtypes.ISUB_R:   emitIsubR,
		rxtypes.ISUB_M:   emitIsubM,
		rxtypes.IMUL_R:   emitImulR,
		rxtypes.IMUL_M:   emitImulM,
		rxtypes.IMULH_R:  emitImulhR,
		rxtypes.IMULH_M:  emitImulhM,
		rxtypes.ISMULH_R: emitIsmulhR,
		rxtypes.ISMULH_M: emitIsmulhM,
		rxtypes.IMUL_RCP: emitImulRcp,
		rxtypes.INEG_R:   emitInegR,
		rxtypes.IXOR_R:   emitIxorR,
		rxtypes.IXOR_M:   emitIxorM,
		rxtypes.IROR_R:   emitIrorR,
		rxtypes.IROL_R:   emitIrolR,
		rxtypes.ISWAP_R:  emitIswapR,
		rxtypes.FSWAP_R:  emitFswapR,
		rxtypes.FADD_R:   emitFaddR,
		rxtypes.FADD_M:   emitFaddM,
		rxtypes.FSUB_R:   emitFsubR,
		rxtypes.FSUB_M:   emitFsubM,
		rxtypes.FSCAL_R:  emitFscalR,
		rxtypes.FMUL_R:   emitFmulR,
		rxtypes.FDIV_M:   emitFdivM,
		rxtypes.FSQRT_R:  emitFsqrtR,
		rxtypes.CBRANCH:  emitCbranch,
		rxtypes.CFROUND:  emitCfround,
		rxtypes.ISTORE:   emitIstore,
		rxtypes.NOP:      emitNop,
	}
	for op, emit := range emitters {
		dispatchTable[op] = emit
	}
}

// Compiler owns one code buffer and the per-compilation tracking state.
// Not safe for concurrent compilation; distinct Compiler instances may
// compile in parallel, each owning its own CodeBuffer.
type Compiler struct {
	buf  *CodeBuffer
	asm  *Assembler
	bt   *branchTracker
	frag *fragments
}

// NewCompiler allocates a fresh CodeBuffer and returns a Compiler ready
// to accept GenerateProgram/GenerateProgramLight/GenerateSuperscalarHash
// calls.
func NewCompiler() (*Compiler, error) {
	buf, err := NewCodeBuffer()
	if err != nil {
		return nil, err
	}
	return &Compiler{
		buf:  buf,
		bt:   newBranchTracker(),
		frag: defaultFragments(),
	}, nil
}

// Free releases the underlying code buffer.
func (c *Compiler) Free() error { return c.buf.Free() }

// CodeBuffer exposes the underlying buffer, e.g. to call MakeExecutable
// or to read back the compiled bytes for golden-vector comparisons.
func (c *Compiler) CodeBuffer() *CodeBuffer { return c.buf }

// InstructionOffsets returns the code-buffer offset at which each of the
// 256 VM instructions' generated bytes began, valid after the most
// recent GenerateProgram/GenerateProgramLight call.
func (c *Compiler) InstructionOffsets() [rxtypes.ProgramSize]int {
	return c.bt.instructionOffsets
}

// RegisterModifiedAt returns the register-modified table's final state.
func (c *Compiler) RegisterModifiedAt() [8]int {
	return c.bt.registerModifiedAt
}

// GenerateProgram compiles a full-mode program: the compiled function
// reads its dataset directly from a precomputed dataset buffer.
func (c *Compiler) GenerateProgram(p *rxtypes.Program, cfg *rxtypes.ProgramConfiguration) error {
	return c.generateProgram(p, cfg, false)
}

// GenerateProgramLight compiles a light-mode program: the compiled
// function derives each dataset item on demand by calling into the
// SuperscalarHash routine at rxtypes.SuperScalarHashOffset.
func (c *Compiler) GenerateProgramLight(p *rxtypes.Program, cfg *rxtypes.ProgramConfiguration) error {
	return c.generateProgram(p, cfg, true)
}

func (c *Compiler) generateProgram(p *rxtypes.Program, cfg *rxtypes.ProgramConfiguration, light bool) error {
	if !c.buf.IsWritable() {
		if err := c.buf.MakeWritable(); err != nil {
			return err
		}
	}

	c.bt.reset()
	main := c.buf.MainRegion()
	c.asm = NewAssembler(main)

	c.patchEMask(cfg.EMask)

	progStart := len(c.frag.prologue) + len(c.frag.loopLoad)
	c.asm.offset = progStart

	for i := 0; i < rxtypes.ProgramSize; i++ {
		c.bt.instructionOffsets[i] = c.asm.Offset()
		emit := dispatchTable[p[i].Op]
		if emit == nil {
			emit = emitNop
		}
		emit(c, p[i], i)
	}

	// Address-mixing step: MOV eax, readReg2; XOR eax, readReg3
	c.asm.MovRegReg32(RAX, intReg[cfg.ReadReg[2]])
	c.asm.XorRegReg32(RAX, intReg[cfg.ReadReg[3]])

	if !light {
		c.asm.emit(c.frag.readDatasetFull...)
	} else {
		c.asm.emit(c.frag.readDatasetLightInit...)
		c.asm.AddRegImm32(RBX, int32(cfg.DatasetOffset/rxtypes.CacheLineSize))
		c.asm.MovRegReg(RDI, RBX)
		c.asm.ShlRegImm8(RDI, 6)
		c.asm.AddRegReg(RDI, RDX)
		callSite := c.asm.Offset()
		rel := int32(rxtypes.SuperScalarHashOffset) - int32(callSite+5)
		c.asm.CallRel32(rel)
		c.asm.emit(c.frag.readDatasetLightFin...)
	}

	// MOV rax, readReg0; XOR rax, readReg1
	c.asm.MovRegReg(RAX, intReg[cfg.ReadReg[0]])
	c.asm.XorRegReg(RAX, intReg[cfg.ReadReg[1]])
	c.asm.emit(c.frag.loopStore...)

	c.asm.SubRegImm32(RBX, 1)
	loopBackTarget := len(c.frag.prologue)
	jnzSite := c.asm.Offset()
	rel8 := int32(loopBackTarget) - int32(jnzSite+2)
	if rel8 >= -128 && rel8 <= 127 {
		c.asm.Jne(int8(rel8))
	} else {
		c.asm.JneNear(int32(loopBackTarget) - int32(jnzSite+6))
	}

	epilogueOffset := rxtypes.RandomXCodeSize - len(c.frag.epilogue)
	jmpSite := c.asm.Offset()
	c.asm.JmpRel32(int32(epilogueOffset) - int32(jmpSite+5))

	return nil
}

// patchEMask overwrites the 16-byte eMask (OR-mask) slot at
// constEOrMaskOffset within the xmm-constants region, which this
// implementation places immediately before the epilogue (see
// fragments.go's buildXmmConstants).
func (c *Compiler) patchEMask(mask [16]byte) {
	off := c.xmmConstantsOffset() + constEOrMaskOffset
	copy(c.buf.mem[off:off+16], mask[:])
}

func (c *Compiler) xmmConstantsOffset() int {
	return rxtypes.RandomXCodeSize - len(c.frag.epilogue) - len(c.frag.xmmConstants)
}

// constAddr returns the absolute runtime address of byte offset within
// the xmm-constants region, baked into MOV-immediate/memory-operand pairs
// at compile time since this code buffer never moves once mmapped.
func (c *Compiler) constAddr(offset int) uint64 {
	return uint64(sliceAddr(c.buf.mem) + uintptr(c.xmmConstantsOffset()+offset))
}

// roundingTableAddr returns the runtime address of the 4-entry MXCSR
// control-word table CFROUND indexes into.
func (c *Compiler) roundingTableAddr() uint64 {
	return c.constAddr(constRoundingTableOffset)
}

// GenerateDatasetInitCode overwrites the prologue at offset 0 with the
// dataset-init fragment, producing the alternative DatasetInitFunc entry
// point spec.md §6 describes.
func (c *Compiler) GenerateDatasetInitCode() error {
	if !c.buf.IsWritable() {
		if err := c.buf.MakeWritable(); err != nil {
			return err
		}
	}
	copy(c.buf.mem[0:], c.frag.datasetInit)
	return nil
}
