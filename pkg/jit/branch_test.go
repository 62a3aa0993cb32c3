//go:build linux && amd64

package jit

import "testing"

func TestBranchTrackerResetClearsState(t *testing.T) {
	bt := newBranchTracker()
	bt.markModified(3, 5)
	bt.target(3, 5)
	bt.reset()

	for reg, at := range bt.registerModifiedAt {
		if at != -1 {
			t.Errorf("registerModifiedAt[%d] = %d after reset, want -1", reg, at)
		}
	}
	if bt.lastBranchAt != -1 {
		t.Errorf("lastBranchAt = %d after reset, want -1", bt.lastBranchAt)
	}
}

func TestBranchTrackerTargetIsRegisterModifiedPlusOne(t *testing.T) {
	bt := newBranchTracker()
	bt.markModified(2, 10)

	got := bt.target(2, 20)
	if want := 11; got != want {
		t.Errorf("target() = %d, want %d", got, want)
	}
	if bt.lastBranchAt != 20 {
		t.Errorf("lastBranchAt = %d, want 20", bt.lastBranchAt)
	}
}

func TestBranchTrackerTargetNeverPrecedesLastBranch(t *testing.T) {
	bt := newBranchTracker()
	// register 4 was last written before the previous branch instruction.
	bt.markModified(4, 5)
	bt.lastBranchAt = 15

	got := bt.target(4, 30)
	if want := 16; got != want {
		t.Errorf("target() = %d, want %d (lastBranchAt+1)", got, want)
	}
}

func TestBranchTrackerTargetUnmodifiedRegisterTargetsProgramStart(t *testing.T) {
	bt := newBranchTracker()
	got := bt.target(0, 7)
	if want := 0; got != want {
		t.Errorf("target() for never-modified register = %d, want %d", got, want)
	}
}

func TestMarkIntUpdatesTrackerEvenWhenElided(t *testing.T) {
	c := &Compiler{bt: newBranchTracker()}
	c.markInt(6, 42)
	if got := c.bt.registerModifiedAt[6]; got != 42 {
		t.Errorf("registerModifiedAt[6] = %d, want 42", got)
	}
}

func TestIsPowerOfTwoOrZero(t *testing.T) {
	cases := map[uint32]bool{
		0:          true,
		1:          true,
		2:          true,
		4:          true,
		1 << 31:    true,
		3:          false,
		6:          false,
		0xFFFFFFFF: false,
	}
	for v, want := range cases {
		if got := isPowerOfTwoOrZero(v); got != want {
			t.Errorf("isPowerOfTwoOrZero(%d) = %v, want %v", v, got, want)
		}
	}
}
