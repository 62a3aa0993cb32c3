package rxtypes

import (
	"math/big"
	"math/bits"
	"testing"
)

func TestInstructionFieldAccessors(t *testing.T) {
	instr := Instruction{Dst: 11, Src: 22, Mod: 0b1011_01_10}
	if got := instr.Dst8(); got != 11%8 {
		t.Errorf("Dst8() = %d, want %d", got, 11%8)
	}
	if got := instr.Src8(); got != 22%8 {
		t.Errorf("Src8() = %d, want %d", got, 22%8)
	}
	if got := instr.ModMem(); got != 0b10 {
		t.Errorf("ModMem() = %#b, want %#b", got, 0b10)
	}
	if got := instr.ModShift(); got != 0b01 {
		t.Errorf("ModShift() = %#b, want %#b", got, 0b01)
	}
	if got := instr.ModCond(); got != 0b1011 {
		t.Errorf("ModCond() = %#b, want %#b", got, 0b1011)
	}
}

func TestReciprocalExactRemainderInvariant(t *testing.T) {
	// Reciprocal computes q = floor(2^63/d), r = 2^63 mod d, and returns
	// (q<<shift) + floor((r<<shift)/d) where shift is d's bit length.
	// Algebraically this satisfies result*d == 2^(63+shift) - s for some
	// 0 <= s < d; this holds regardless of the exact multiply-shift
	// constant convention chosen, so it's a fair correctness check
	// independent of upstream bit-for-bit compatibility.
	divisors := []uint32{3, 5, 7, 9, 15, 255, 65535, 0x0001FFFF, 0xFFFFFFFF}
	for _, d := range divisors {
		got := Reciprocal(d)

		shift := 32 - bits.LeadingZeros32(d)
		lhs := new(big.Int).Lsh(big.NewInt(1), uint(63+shift))
		product := new(big.Int).Mul(new(big.Int).SetUint64(got), big.NewInt(int64(d)))
		s := new(big.Int).Sub(lhs, product)

		if s.Sign() < 0 {
			t.Errorf("Reciprocal(%d): remainder %s is negative", d, s)
			continue
		}
		if s.Cmp(big.NewInt(int64(d))) >= 0 {
			t.Errorf("Reciprocal(%d): remainder %s >= divisor", d, s)
		}
	}
}

func TestReciprocalDeterministic(t *testing.T) {
	if Reciprocal(12345) != Reciprocal(12345) {
		t.Fatal("Reciprocal is not deterministic")
	}
}

func TestScratchpadMaskFor(t *testing.T) {
	if ScratchpadMaskFor(0) != ScratchpadL2Mask {
		t.Errorf("modMem 0 should select the L2 mask")
	}
	for _, m := range []byte{1, 2, 3} {
		if ScratchpadMaskFor(m) != ScratchpadL1Mask {
			t.Errorf("modMem %d should select the L1 mask", m)
		}
	}
}

func TestRegisterFileOffsetsDoNotOverlap(t *testing.T) {
	offsets := []int{RegFileROffset, RegFileFOffset, RegFileEOffset, RegFileAOffset}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] <= offsets[i-1] {
			t.Fatalf("RegisterFile offsets not strictly increasing: %v", offsets)
		}
	}
	if offsets[len(offsets)-1] >= RegisterFileSize {
		t.Fatalf("last offset %d exceeds RegisterFileSize %d", offsets[len(offsets)-1], RegisterFileSize)
	}
}
