package goldenstore

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cryptonote-social/RandomX/pkg/rxtypes"
)

func testVector() *Vector {
	var p rxtypes.Program
	p[0] = rxtypes.Instruction{Op: rxtypes.IADD_RS, Dst: 1, Src: 2}
	var offsets [rxtypes.ProgramSize]int
	offsets[1] = 4
	return &Vector{
		Program: p,
		Config: rxtypes.ProgramConfiguration{
			ReadReg: [4]int{0, 1, 2, 3},
		},
		Light:              false,
		Code:               []byte{0x90, 0x90, 0xC3},
		InstructionOffsets: offsets,
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "golden"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKeyIsDeterministic(t *testing.T) {
	v := testVector()
	k1, err := Key(&v.Program, &v.Config, v.Light)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	k2, err := Key(&v.Program, &v.Config, v.Light)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if k1 != k2 {
		t.Error("Key is not deterministic for identical inputs")
	}
}

func TestKeyDiffersOnLightFlag(t *testing.T) {
	v := testVector()
	kFull, err := Key(&v.Program, &v.Config, false)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	kLight, err := Key(&v.Program, &v.Config, true)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if kFull == kLight {
		t.Error("Key should differ between light and full mode for the same program/config")
	}
}

func TestKeyDiffersOnProgramContent(t *testing.T) {
	v1 := testVector()
	v2 := testVector()
	v2.Program[10] = rxtypes.Instruction{Op: rxtypes.NOP}

	k1, _ := Key(&v1.Program, &v1.Config, v1.Light)
	k2, _ := Key(&v2.Program, &v2.Config, v2.Light)
	if k1 == k2 {
		t.Error("Key should differ when program contents differ")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	v := testVector()

	if err := s.Save(v); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(&v.Program, &v.Config, v.Light)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if string(got.Code) != string(v.Code) {
		t.Errorf("Code = % x, want % x", got.Code, v.Code)
	}
	if got.InstructionOffsets != v.InstructionOffsets {
		t.Errorf("InstructionOffsets = %v, want %v", got.InstructionOffsets, v.InstructionOffsets)
	}
}

func TestSaveLoadRoundTripPreservesEveryField(t *testing.T) {
	s := openTestStore(t)
	v := testVector()
	if err := s.Save(v); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(&v.Program, &v.Config, v.Light)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(v, got); diff != "" {
		t.Errorf("round-tripped vector mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingKeyReturnsNilNil(t *testing.T) {
	s := openTestStore(t)
	v := testVector()
	got, err := s.Load(&v.Program, &v.Config, v.Light)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Fatal("Load on an empty store should return (nil, nil)")
	}
}

func TestVerifyMatchesAfterSave(t *testing.T) {
	s := openTestStore(t)
	v := testVector()
	if err := s.Save(v); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ok, err := s.Verify(&v.Program, &v.Config, v.Light, v.Code, v.InstructionOffsets)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Error("Verify should match a vector saved with identical code and offsets")
	}
}

func TestVerifyDetectsCodeDrift(t *testing.T) {
	s := openTestStore(t)
	v := testVector()
	if err := s.Save(v); err != nil {
		t.Fatalf("Save: %v", err)
	}
	drifted := append([]byte(nil), v.Code...)
	drifted[0] = 0xCC
	ok, err := s.Verify(&v.Program, &v.Config, v.Light, drifted, v.InstructionOffsets)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Error("Verify should detect a code mismatch")
	}
}

func TestVerifyMissingVectorReportsFalseNilError(t *testing.T) {
	s := openTestStore(t)
	v := testVector()
	ok, err := s.Verify(&v.Program, &v.Config, v.Light, v.Code, v.InstructionOffsets)
	if err != nil {
		t.Fatalf("Verify on empty store returned error: %v", err)
	}
	if ok {
		t.Error("Verify against an empty store should report ok=false")
	}
}
