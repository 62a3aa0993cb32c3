//go:build !linux || !amd64

// Package jit provides stub types for platforms that cannot host an
// executable, self-modifying code buffer. The real JIT implementation is
// only available on linux/amd64.
package jit

import (
	"fmt"
	"runtime"

	"github.com/cryptonote-social/RandomX/pkg/rxtypes"
)

var errUnsupported = fmt.Errorf("randomx jit: unsupported platform %s/%s", runtime.GOOS, runtime.GOARCH)

// CodeBuffer is a stub; NewCodeBuffer always fails on this platform.
type CodeBuffer struct{}

func NewCodeBuffer() (*CodeBuffer, error) { return nil, errUnsupported }

func (cb *CodeBuffer) MakeWritable() error             { return errUnsupported }
func (cb *CodeBuffer) MakeExecutable() error            { return errUnsupported }
func (cb *CodeBuffer) MakeWritableAndExecutable() error { return errUnsupported }
func (cb *CodeBuffer) Free() error                      { return nil }

// Compiler is a stub; NewCompiler always fails on this platform.
type Compiler struct{}

func NewCompiler() (*Compiler, error) { return nil, errUnsupported }

func (c *Compiler) Free() error { return nil }

func (c *Compiler) GenerateProgram(*rxtypes.Program, *rxtypes.ProgramConfiguration) error {
	return errUnsupported
}

func (c *Compiler) GenerateProgramLight(*rxtypes.Program, *rxtypes.ProgramConfiguration) error {
	return errUnsupported
}

func (c *Compiler) GenerateDatasetInitCode() error { return errUnsupported }

func (c *Compiler) GenerateSuperscalarHash([]*rxtypes.SuperscalarProgram, rxtypes.ReciprocalCache) error {
	return errUnsupported
}
