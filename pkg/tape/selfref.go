package tape

import (
	"math/bits"

	"github.com/oisee/bbdecide/pkg/transition"
)

// UpdateSelfRefAccelerated performs one or more equivalent single steps in
// a single operation, for a transition known to be self-referencing (its
// (state, symbol) target is itself — see transition.Transition.IsSelfRef).
// Because such a transition always writes the same symbol it is currently
// reading, every cell ahead of the head that already holds that symbol can
// be crossed in one shift instead of one UpdateSingleStep call each.
//
// It returns the number of equivalent single steps actually executed
// (always ≥ 1), or 0 if a required block swap failed because the tape
// reached its configured size limit.
func (t *Tape) UpdateSelfRefAccelerated(tr transition.Transition) int {
	symbol := tr.Symbol()
	dir := tr.Direction()

	run := t.runLength(dir, symbol)
	jump := run + 1

	var margin int
	if dir == transition.DirRight {
		margin = swapMargin - t.posMiddle
	} else {
		margin = swapMargin + t.posMiddle
	}
	if jump > margin {
		jump = margin
	}

	// Every one of the jump cells already holds `symbol`, so writing it is
	// a no-op; only the shift itself has an observable effect.
	t.shiftBy(dir, jump)

	if dir == transition.DirRight {
		t.posMiddle += jump
		if t.posMiddle == swapMargin {
			if !t.swapRight() {
				return 0
			}
		}
	} else {
		t.posMiddle -= jump
		if t.posMiddle == -swapMargin {
			if !t.swapLeft() {
				return 0
			}
		}
	}
	return jump
}

// runLength returns how many cells strictly ahead of the head, in
// direction dir, already equal symbol, using leading/trailing-zero-count
// intrinsics instead of a bit-by-bit scan.
func (t *Tape) runLength(dir transition.Direction, symbol uint8) int {
	if dir == transition.DirRight {
		if symbol == 0 {
			return bits.TrailingZeros64(t.hi)
		}
		return bits.TrailingZeros64(^t.hi)
	}
	shifted := t.lo << 1
	if symbol == 0 {
		return bits.LeadingZeros64(shifted)
	}
	return bits.LeadingZeros64(^shifted)
}

// shiftBy shifts the window by n bits (1..2*swapMargin-1) in one operation.
func (t *Tape) shiftBy(dir transition.Direction, n int) {
	if n == 0 {
		return
	}
	if dir == transition.DirRight {
		t.lo = (t.lo >> uint(n)) | (t.hi << uint(64-n))
		t.hi = t.hi >> uint(n)
	} else {
		t.hi = (t.hi << uint(n)) | (t.lo >> uint(64-n))
		t.lo = t.lo << uint(n)
	}
}
