// Package rxtypes holds the fixed input types the JIT compiler consumes:
// decoded VM instructions, per-run configuration, and the superscalar
// program shapes used for light-mode dataset derivation.
package rxtypes

import "math/bits"

// Opcode names a decoded VM instruction. The numeric values only need to
// be distinct; they are not raw RandomX opcode bytes (BuildDispatchTable
// maps a raw byte to one of these).
type Opcode byte

const (
	IADD_RS Opcode = iota
	IADD_M
	ISUB_R
	ISUB_M
	IMUL_R
	IMUL_M
	IMULH_R
	IMULH_M
	ISMULH_R
	ISMULH_M
	IMUL_RCP
	INEG_R
	IXOR_R
	IXOR_M
	IROR_R
	IROL_R
	ISWAP_R
	FSWAP_R
	FADD_R
	FADD_M
	FSUB_R
	FSUB_M
	FSCAL_R
	FMUL_R
	FDIV_M
	FSQRT_R
	CBRANCH
	CFROUND
	ISTORE
	NOP
	opcodeCount
)

// Instruction is one decoded RandomX VM instruction, immutable input to
// the compiler.
type Instruction struct {
	Op    Opcode
	Dst   byte  // pre mod-8, matches wire encoding
	Src   byte  // pre mod-8
	Mod   byte  // modMem bits 0-1 | modShift bits 2-3 | modCond bits 4-7, see accessors
	Imm32 int32
}

// Dst8 returns the destination register index, 0-7.
func (i Instruction) Dst8() byte { return i.Dst % 8 }

// Src8 returns the source register index, 0-7.
func (i Instruction) Src8() byte { return i.Src % 8 }

// ModShift returns bits 2-3 of Mod, used as a SIB scale by IADD_RS.
func (i Instruction) ModShift() byte { return (i.Mod >> 2) & 3 }

// ModMem returns bits 0-1 of Mod, selecting a scratchpad mask entry.
func (i Instruction) ModMem() byte { return i.Mod & 3 }

// ModCond returns bits 4-7 of Mod, used by CBRANCH and ISTORE.
func (i Instruction) ModCond() byte { return (i.Mod >> 4) & 0xF }

// ProgramConfiguration carries the per-compilation parameters that vary
// with the VM's entropy but are not part of the instruction stream
// itself.
type ProgramConfiguration struct {
	ReadReg       [4]int
	EMask         [16]byte
	DatasetOffset uint32
}

// ProgramSize is RANDOMX_PROGRAM_SIZE, aliasing the same constant
// constants.go defines for the dispatch-table and code-sizing math so
// the two never drift apart.
const ProgramSize = RandomxProgramSize

// Program is a fixed-length instruction stream, one JIT compilation unit.
type Program [ProgramSize]Instruction

// SuperscalarOpcode enumerates the light-mode dataset-derivation opcode
// set, distinct from and smaller than the main VM opcode set.
type SuperscalarOpcode byte

const (
	SsISUB_R SuperscalarOpcode = iota
	SsIXOR_R
	SsIADD_RS
	SsIMUL_R
	SsIROR_C
	SsIADD_C7
	SsIADD_C8
	SsIADD_C9
	SsIXOR_C7
	SsIXOR_C8
	SsIXOR_C9
	SsIMULH_R
	SsISMULH_R
	SsIMUL_RCP
)

// SuperscalarInstruction is one instruction of a superscalar program.
type SuperscalarInstruction struct {
	Op    SuperscalarOpcode
	Dst   byte
	Src   byte
	Mod   byte
	Imm32 int32
	// ReciprocalIndex indexes into the ReciprocalCache supplied alongside
	// the program, valid only when Op == SsIMUL_RCP.
	ReciprocalIndex int
}

// SuperscalarProgram is one of the N programs chained together by the
// SuperscalarHash routine to derive a single dataset item.
type SuperscalarProgram struct {
	Instructions    []SuperscalarInstruction
	AddressRegister int // which of r8..r15 seeds the next program's prefetch
}

// ReciprocalCache holds the precomputed 64-bit multiplicative inverses
// consumed by SsIMUL_RCP, indexed by SuperscalarInstruction.ReciprocalIndex.
type ReciprocalCache []uint64

// RegisterFile is the caller-documented VM state layout the compiled
// program's prologue loads from and the epilogue stores back to. Field
// order fixes the byte offsets the prologue/epilogue fragments and the
// ISTORE/address-generator code depend on.
type RegisterFile struct {
	R [8]uint64     // integer registers r0..r7, loaded into r8..r15
	F [4][2]float64 // "f" packed-double bank, loaded into xmm0..xmm3
	E [4][2]float64 // "e" packed-double bank, loaded into xmm4..xmm7
	A [4][2]float64 // "a" packed-double bank, read-only across a program, xmm8..xmm11
}

// RegisterFileSize is the byte size of RegisterFile: 8 uint64 + 4+4+4
// pairs of float64, used by the prologue/epilogue fragments to compute
// field offsets without depending on unsafe.Sizeof at codegen time.
const RegisterFileSize = 8*8 + 4*16 + 4*16 + 4*16

// Field byte offsets within RegisterFile, computed by hand to match the
// struct layout above (no padding: every field is 8-or-16-byte aligned
// already).
const (
	RegFileROffset = 0
	RegFileFOffset = RegFileROffset + 8*8
	RegFileEOffset = RegFileFOffset + 4*16
	RegFileAOffset = RegFileEOffset + 4*16
)

// Reciprocal computes the 64-bit multiplicative-inverse constant IMUL_RCP
// loads into rax: given a 32-bit divisor that is neither zero nor a power
// of two, returns floor(2^(63+n) / divisor), where n is the divisor's bit
// length.
func Reciprocal(divisor uint32) uint64 {
	const p2exp63 = uint64(1) << 63
	q := p2exp63 / uint64(divisor)
	r := p2exp63 % uint64(divisor)

	shift := 32 - bits.LeadingZeros32(divisor)
	return (q << uint(shift)) + ((r << uint(shift)) / uint64(divisor))
}
