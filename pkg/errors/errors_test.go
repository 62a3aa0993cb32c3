package errors

import (
	stderrors "errors"
	"testing"
)

func TestWrapCompilationErrorUnwrapsToSentinel(t *testing.T) {
	err := WrapCompilationError(ErrAllocationFailed, "mmap failed")
	if !stderrors.Is(err, ErrAllocationFailed) {
		t.Error("wrapped error should unwrap to ErrAllocationFailed")
	}
	if stderrors.Is(err, ErrProtectionTransitionFailed) {
		t.Error("wrapped error should not match an unrelated sentinel")
	}
}

func TestIsCompilationError(t *testing.T) {
	wrapped := WrapCompilationError(ErrUnknownOpcode, "opcode 200")
	if !IsCompilationError(wrapped) {
		t.Error("IsCompilationError should recognize a *CompilationError")
	}
	if IsCompilationError(stderrors.New("plain error")) {
		t.Error("IsCompilationError should reject a plain error")
	}
}

func TestCompilationErrorfFormatsMessage(t *testing.T) {
	err := CompilationErrorf("bad opcode %d", 42)
	want := "bad opcode 42"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Unwrap() != nil {
		t.Error("CompilationErrorf should have no wrapped cause")
	}
}

func TestCompilationErrorMessageIncludesCause(t *testing.T) {
	err := WrapCompilationError(ErrAllocationFailed, "out of memory")
	if got, want := err.Error(), "out of memory: code buffer allocation failed"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
