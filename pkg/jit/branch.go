//go:build linux && amd64

package jit

import "github.com/cryptonote-social/RandomX/pkg/rxtypes"

// branchTracker holds the per-compilation mutable state the CBRANCH
// emitter consults to compute a backward jump target: which VM
// instruction most recently wrote each integer register, and where the
// most recent CBRANCH was emitted. Reset at the start of every
// GenerateProgram/GenerateProgramLight call; there is no
// cross-compilation persistence.
type branchTracker struct {
	registerModifiedAt [8]int
	lastBranchAt        int
	instructionOffsets  [rxtypes.ProgramSize]int
}

func newBranchTracker() *branchTracker {
	bt := &branchTracker{}
	bt.reset()
	return bt
}

func (bt *branchTracker) reset() {
	for i := range bt.registerModifiedAt {
		bt.registerModifiedAt[i] = -1
	}
	bt.lastBranchAt = -1
	for i := range bt.instructionOffsets {
		bt.instructionOffsets[i] = 0
	}
}

// markModified records that VM instruction i wrote integer register reg
// (0-7). Called by every integer-producing emitter, including ones that
// elide all bytes for this instruction (IROR_R/IROL_R self with zero
// shift) — the table must be a faithful record of instruction indices,
// not of emissions.
func (bt *branchTracker) markModified(reg int, i int) {
	bt.registerModifiedAt[reg] = i
}

// target computes the CBRANCH backward-jump destination instruction
// index B for a branch at instruction index i whose destination register
// is dst. It also advances lastBranchAt to i, matching the reference's
// side effect of updating tracker state as part of computing the target.
func (bt *branchTracker) target(dst int, i int) int {
	b := bt.registerModifiedAt[dst]
	if b < bt.lastBranchAt {
		b = bt.lastBranchAt + 1
	} else {
		b = b + 1
	}
	bt.lastBranchAt = i
	return b
}
