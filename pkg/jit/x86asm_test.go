//go:build linux && amd64

package jit

import (
	"bytes"
	"testing"
)

func assembled(fn func(a *Assembler)) []byte {
	a := NewAssembler(make([]byte, 64))
	fn(a)
	return a.Bytes()
}

func TestMovRegRegEncoding(t *testing.T) {
	// mov rax, rcx: REX.W (0x48) + 0x89 + modrm(11 001 000)
	got := assembled(func(a *Assembler) { a.MovRegReg(RAX, RCX) })
	want := []byte{0x48, 0x89, 0xC8}
	if !bytes.Equal(got, want) {
		t.Errorf("MovRegReg(RAX, RCX) = % x, want % x", got, want)
	}
}

func TestMovRegRegExtendedRegistersSetRexBits(t *testing.T) {
	// mov r8, r15: REX.W+R+B (0x4D) + 0x89 + modrm(11 111 000)
	got := assembled(func(a *Assembler) { a.MovRegReg(R8, R15) })
	want := []byte{0x4D, 0x89, 0xF8}
	if !bytes.Equal(got, want) {
		t.Errorf("MovRegReg(R8, R15) = % x, want % x", got, want)
	}
}

func TestMovRegImm64Encoding(t *testing.T) {
	// mov rax, 0x0102030405060708: REX.W (0x48) + 0xB8 + imm64 little-endian
	got := assembled(func(a *Assembler) { a.MovRegImm64(RAX, 0x0102030405060708) })
	want := []byte{0x48, 0xB8, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(got, want) {
		t.Errorf("MovRegImm64 = % x, want % x", got, want)
	}
}

func TestAddRegImm32Encoding(t *testing.T) {
	got := assembled(func(a *Assembler) { a.AddRegImm32(RBX, 100) })
	if len(got) < 3 {
		t.Fatalf("AddRegImm32 emitted %d bytes, want at least 3", len(got))
	}
	if got[0]&0x48 != 0x48 {
		t.Errorf("AddRegImm32 first byte %#x missing REX.W", got[0])
	}
}

func TestPushPopAreSingleByteForLowRegisters(t *testing.T) {
	got := assembled(func(a *Assembler) { a.Push(RBX); a.Pop(RBX) })
	if len(got) != 2 || got[0] != 0x53 || got[1] != 0x5B {
		t.Errorf("Push/Pop RBX = % x, want [53 5b]", got)
	}
}

func TestPushExtendedRegisterNeedsRexPrefix(t *testing.T) {
	got := assembled(func(a *Assembler) { a.Push(R12) })
	if len(got) != 2 {
		t.Fatalf("Push(R12) emitted %d bytes, want 2 (REX + opcode)", len(got))
	}
	if got[0]&0x41 != 0x41 {
		t.Errorf("Push(R12) REX byte %#x missing REX.B", got[0])
	}
}

func TestRetAndNopAreSingleByte(t *testing.T) {
	if got := assembled(func(a *Assembler) { a.Ret() }); !bytes.Equal(got, []byte{0xC3}) {
		t.Errorf("Ret() = % x, want [c3]", got)
	}
	if got := assembled(func(a *Assembler) { a.Nop() }); !bytes.Equal(got, []byte{0x90}) {
		t.Errorf("Nop() = % x, want [90]", got)
	}
}

func TestJeShortEncoding(t *testing.T) {
	got := assembled(func(a *Assembler) { a.Je(-16) })
	offset := int8(-16)
	want := []byte{0x74, byte(offset)}
	if !bytes.Equal(got, want) {
		t.Errorf("Je(-16) = % x, want % x", got, want)
	}
}

func TestJeNearEncoding(t *testing.T) {
	got := assembled(func(a *Assembler) { a.JeNear(0x1000) })
	if len(got) != 6 || got[0] != 0x0F || got[1] != 0x84 {
		t.Errorf("JeNear = % x, want 6 bytes starting with [0f 84]", got)
	}
}

func TestXchgRegRegEmitsBytes(t *testing.T) {
	got := assembled(func(a *Assembler) { a.XchgRegReg(R8, R9) })
	if len(got) == 0 {
		t.Error("XchgRegReg emitted no bytes")
	}
}

func TestOffsetTracksEmittedBytes(t *testing.T) {
	a := NewAssembler(make([]byte, 64))
	if a.Offset() != 0 {
		t.Fatalf("fresh Assembler.Offset() = %d, want 0", a.Offset())
	}
	a.Nop()
	a.Ret()
	if a.Offset() != 2 {
		t.Fatalf("Assembler.Offset() after Nop+Ret = %d, want 2", a.Offset())
	}
}
