//go:build linux && amd64

package jit

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	rxerrors "github.com/cryptonote-social/RandomX/pkg/errors"
	"github.com/cryptonote-social/RandomX/pkg/rxtypes"
)

func sliceAddr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

// CodeBuffer owns the single page-aligned memory region a Compiler writes
// into and eventually executes out of. It holds two logical sub-regions:
// the main program region (size rxtypes.RandomXCodeSize, starting at
// offset 0) and the SuperscalarHash region (starting at
// rxtypes.SuperScalarHashOffset). Both toggle between writable and
// executable together; the compiler never needs one region writable
// while the other is executable.
type CodeBuffer struct {
	mu       sync.Mutex
	mem      []byte
	writable bool
}

// NewCodeBuffer allocates a fresh CodeBuffer sized to rxtypes.CodeSize and
// preloads the prologue, loop-load, and epilogue fragments, plus the
// xmm-constants region just before the epilogue, at their fixed offsets
// while the region is still writable.
func NewCodeBuffer() (*CodeBuffer, error) {
	mem, err := unix.Mmap(-1, 0, rxtypes.CodeSize,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, rxerrors.WrapCompilationError(rxerrors.ErrAllocationFailed, err.Error())
	}

	cb := &CodeBuffer{mem: mem, writable: true}
	frag := defaultFragments()
	copy(cb.mem[0:], frag.prologue)
	copy(cb.mem[len(frag.prologue):], frag.loopLoad)
	epilogueOffset := rxtypes.RandomXCodeSize - len(frag.epilogue)
	copy(cb.mem[epilogueOffset:], frag.epilogue)
	copy(cb.mem[epilogueOffset-len(frag.xmmConstants):], frag.xmmConstants)
	return cb, nil
}

// Bytes returns the whole underlying region. Callers must not retain it
// across a permission-state transition.
func (cb *CodeBuffer) Bytes() []byte {
	return cb.mem
}

// MainRegion returns the main-program sub-slice, offset 0 through
// rxtypes.RandomXCodeSize.
func (cb *CodeBuffer) MainRegion() []byte {
	return cb.mem[:rxtypes.RandomXCodeSize]
}

// SuperscalarRegion returns the SuperscalarHash sub-slice, starting at
// rxtypes.SuperScalarHashOffset.
func (cb *CodeBuffer) SuperscalarRegion() []byte {
	return cb.mem[rxtypes.SuperScalarHashOffset:]
}

// IsWritable reports the buffer's current permission state.
func (cb *CodeBuffer) IsWritable() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.writable
}

// MakeWritable transitions the whole buffer to PROT_READ|PROT_WRITE.
// Must be called before any GenerateProgram*/GenerateSuperscalarHash call.
func (cb *CodeBuffer) MakeWritable() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.writable {
		return nil
	}
	if err := unix.Mprotect(cb.mem, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return rxerrors.WrapCompilationError(rxerrors.ErrProtectionTransitionFailed, err.Error())
	}
	cb.writable = true
	return nil
}

// MakeExecutable transitions the whole buffer to PROT_READ|PROT_EXEC.
// Must be called before invoking any entry point in the buffer. Between
// this call and the next MakeWritable, the buffer contents must not be
// modified.
func (cb *CodeBuffer) MakeExecutable() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.writable {
		return nil
	}
	if err := unix.Mprotect(cb.mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return rxerrors.WrapCompilationError(rxerrors.ErrProtectionTransitionFailed, err.Error())
	}
	cb.writable = false
	return nil
}

// MakeWritableAndExecutable transitions the buffer to PROT_READ|
// PROT_WRITE|PROT_EXEC, for hosts that permit RWX mappings and want to
// avoid a syscall between compiling and calling.
func (cb *CodeBuffer) MakeWritableAndExecutable() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err := unix.Mprotect(cb.mem, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); err != nil {
		return rxerrors.WrapCompilationError(rxerrors.ErrProtectionTransitionFailed, err.Error())
	}
	cb.writable = true
	return nil
}

// Free unmaps the region. The CodeBuffer must not be used afterward.
func (cb *CodeBuffer) Free() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.mem == nil {
		return nil
	}
	err := unix.Munmap(cb.mem)
	cb.mem = nil
	return err
}

// ProgramEntry returns the address of the callable ProgramFunc/
// DatasetInitFunc entry point: offset 0 of the buffer.
func (cb *CodeBuffer) ProgramEntry() uintptr {
	return sliceAddr(cb.mem)
}

// SuperscalarEntry returns the address of the SuperscalarHash entry
// point, at the fixed offset rxtypes.SuperScalarHashOffset.
func (cb *CodeBuffer) SuperscalarEntry() uintptr {
	return sliceAddr(cb.mem) + uintptr(rxtypes.SuperScalarHashOffset)
}
