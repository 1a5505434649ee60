// Package tape implements the two-level bit-packed tape engine: a 128-bit
// sliding window around the head, backed by a heap-resident long tape of
// 32-bit cell-blocks for everything outside the window.
package tape

import (
	"math/bits"

	"github.com/oisee/bbdecide/pkg/transition"
)

const (
	// blockBits is the width, in bits, of one long-tape cell-block.
	blockBits = 32
	// blocksInWindow is the number of 32-bit blocks the 128-bit window spans.
	blocksInWindow = 4
	// swapMargin is how many single-bit shifts the window tolerates, in
	// either direction, before it must spill/load a block to stay within
	// its fixed-size register. Equal to one block's width so a spill
	// always happens on an exact block boundary.
	swapMargin = blockBits

	// initBlocks is the number of blocks the long tape starts with.
	initBlocks = blocksInWindow + 4
	// maxGrowthBlocks caps how large a single doubling growth step can be;
	// beyond this the long tape grows linearly by this amount instead.
	maxGrowthBlocks = 1 << 16
)

// Tape is a reusable two-level tape buffer. Construct once per worker and
// call Clear before deciding each machine, mirroring the teacher's
// allocate-once / explicit-clear() idiom for large hot buffers
// (pkg/search/worker.go's SearchTask handling, pkg/result.Table).
type Tape struct {
	// hi, lo together form the 128-bit window; the head is always the
	// fixed bit 63 of lo (lo's top bit). Bit index increases rightward:
	// lo holds the left half of the window (blocks tlPos, tlPos+1), hi
	// the right half (blocks tlPos+2, tlPos+3).
	hi, lo uint64

	// posMiddle is the offset, in single-bit steps, since the window was
	// last block-aligned; it is reset to 0 by every spill/load swap. It is
	// NOT an absolute tape position — see spec §3.4's pos_middle, which is
	// for window bookkeeping, not external reporting.
	posMiddle int

	long   []uint32
	tlPos  int // block index of the window's leftmost block (lo[0:32))
	tlLow  int // lowest block index ever used
	tlHigh int // highest block index ever used

	tapeSizeLimitBlocks int // 0 means unlimited

	sizeLimitHit bool
}

// New returns a Tape ready for use. tapeSizeLimitBlocks caps the total
// number of long-tape blocks the engine may grow to; 0 means unlimited.
func New(tapeSizeLimitBlocks int) *Tape {
	t := &Tape{tapeSizeLimitBlocks: tapeSizeLimitBlocks}
	t.Clear()
	return t
}

// Clear resets the tape to all zeros with the head centered, without
// reallocating the long-tape buffer unless its capacity has grown past four
// times initBlocks (in which case it is replaced by a fresh initBlocks-sized
// buffer to bound per-machine memory in a long batch run).
func (t *Tape) Clear() {
	t.hi, t.lo = 0, 0
	t.posMiddle = 0
	t.sizeLimitHit = false

	alloc := initBlocks
	if t.tapeSizeLimitBlocks > 0 && t.tapeSizeLimitBlocks < alloc {
		alloc = t.tapeSizeLimitBlocks
	}
	if alloc < blocksInWindow {
		alloc = blocksInWindow
	}

	if cap(t.long) == 0 || cap(t.long) > initBlocks*4 {
		t.long = make([]uint32, alloc)
	} else {
		t.long = t.long[:alloc]
		for i := range t.long {
			t.long[i] = 0
		}
	}
	t.tlPos = alloc/2 - 2
	t.tlLow = t.tlPos
	t.tlHigh = t.tlPos + blocksInWindow - 1
}

// CurrentSymbol reads the bit under the head.
func (t *Tape) CurrentSymbol() uint8 {
	if t.lo&(1<<63) != 0 {
		return 1
	}
	return 0
}

func (t *Tape) setCurrentSymbol(symbol uint8) {
	if symbol == 1 {
		t.lo |= 1 << 63
	} else {
		t.lo &^= 1 << 63
	}
}

// shiftRight moves the window's content down by one bit: the new head takes
// the value of the old bit immediately above it (its right neighbor),
// matching a rightward head movement under the "higher bit index = further
// right" convention used throughout this package.
func (t *Tape) shiftRight() {
	t.lo = (t.lo >> 1) | (t.hi << 63)
	t.hi = t.hi >> 1
}

// shiftLeft moves the window's content up by one bit: the new head takes
// the value of the old bit immediately below it (its left neighbor).
func (t *Tape) shiftLeft() {
	t.hi = (t.hi << 1) | (t.lo >> 63)
	t.lo = t.lo << 1
}

func (t *Tape) shift(dir transition.Direction) {
	if dir == transition.DirRight {
		t.shiftRight()
	} else {
		t.shiftLeft()
	}
}

// window blocks, in tlPos..tlPos+3 order.
func (t *Tape) blocks() [4]uint32 {
	return [4]uint32{
		uint32(t.lo),
		uint32(t.lo >> 32),
		uint32(t.hi),
		uint32(t.hi >> 32),
	}
}

func (t *Tape) setBlocks(b [4]uint32) {
	t.lo = uint64(b[0]) | uint64(b[1])<<32
	t.hi = uint64(b[2]) | uint64(b[3])<<32
}

// UpdateSingleStep writes tr's symbol at the head, shifts by one cell in
// tr's direction, and performs a block spill/load if the window has used up
// its margin. It returns false if the long tape could not grow further to
// accommodate the new block (tape-size limit reached); the caller should
// report Undecided(TapeSizeLimit, ...).
func (t *Tape) UpdateSingleStep(tr transition.Transition) bool {
	t.setCurrentSymbol(tr.Symbol())
	t.shift(tr.Direction())

	if tr.Direction() == transition.DirRight {
		t.posMiddle++
		if t.posMiddle == swapMargin {
			if !t.swapRight() {
				return false
			}
		}
	} else {
		t.posMiddle--
		if t.posMiddle == -swapMargin {
			if !t.swapLeft() {
				return false
			}
		}
	}
	return true
}

// Between swaps the head only visits the window's two inner blocks, so the
// long-tape copies of the two outer blocks stay current, while the window's
// own copy of an outer block can lose cells to shifting. The inner blocks
// live only in the window.
//
// swapRight runs once the window has shifted a full block to the right: it
// writes back the old inner-left block (now the outer-left one), advances
// the window one block to the right, and loads the new inner-right and
// outer-right blocks from long tape.
func (t *Tape) swapRight() bool {
	b := t.blocks()
	t.ensureLongCapacityRight(t.tlPos + blocksInWindow)
	t.long[t.tlPos+1] = b[0]
	t.tlPos++
	if t.tlPos+blocksInWindow-1 > t.tlHigh {
		if !t.ensureLongCapacityRight(t.tlPos + blocksInWindow - 1) {
			t.tlPos--
			t.sizeLimitHit = true
			return false
		}
	}
	newBlock := t.long[t.tlPos+blocksInWindow-1]
	t.setBlocks([4]uint32{b[0], b[1], t.long[t.tlPos+blocksInWindow-2], newBlock})
	t.posMiddle = 0
	return true
}

// swapLeft runs once the window has shifted a full block to the left: it
// writes back the old inner-right block (now the outer-right one), advances
// the window one block to the left, and loads the new outer-left and
// inner-left blocks from long tape.
func (t *Tape) swapLeft() bool {
	b := t.blocks()
	if !t.ensureLongCapacityLeft(t.tlPos - 1) {
		t.sizeLimitHit = true
		return false
	}
	t.long[t.tlPos+blocksInWindow-2] = b[3]
	t.tlPos--
	newBlock := t.long[t.tlPos]
	t.setBlocks([4]uint32{newBlock, t.long[t.tlPos+1], b[2], b[3]})
	t.posMiddle = 0
	return true
}

// ensureLongCapacityRight grows the long tape so that index idx is valid,
// doubling (capped at maxGrowthBlocks, then linear) per step. It returns
// false if growth would exceed the configured size limit.
func (t *Tape) ensureLongCapacityRight(idx int) bool {
	for idx >= len(t.long) {
		growBy := min(len(t.long), maxGrowthBlocks)
		if t.tapeSizeLimitBlocks > 0 && len(t.long)+growBy > t.tapeSizeLimitBlocks {
			growBy = t.tapeSizeLimitBlocks - len(t.long)
			if growBy <= 0 {
				return false
			}
		}
		t.long = append(t.long, make([]uint32, growBy)...)
	}
	if idx > t.tlHigh {
		t.tlHigh = idx
	}
	return true
}

// ensureLongCapacityLeft grows the long tape so that index idx (which may
// be negative) is valid, by prepending blocks and shifting tlPos/tlLow/
// tlHigh by the growth amount. Returns false if growth would exceed the
// configured size limit.
func (t *Tape) ensureLongCapacityLeft(idx int) bool {
	for idx < 0 {
		growBy := min(len(t.long), maxGrowthBlocks)
		if growBy == 0 {
			growBy = initBlocks
		}
		if t.tapeSizeLimitBlocks > 0 && len(t.long)+growBy > t.tapeSizeLimitBlocks {
			growBy = t.tapeSizeLimitBlocks - len(t.long)
			if growBy <= 0 {
				return false
			}
		}
		grown := make([]uint32, growBy+len(t.long))
		copy(grown[growBy:], t.long)
		t.long = grown
		t.tlPos += growBy
		t.tlLow += growBy
		t.tlHigh += growBy
		idx += growBy
	}
	if idx < t.tlLow {
		t.tlLow = idx
	}
	return true
}

// CountOnes returns the number of 1-bits across the entire tape touched so
// far: the window plus the long tape's used range.
func (t *Tape) CountOnes() int {
	// Only the two inner blocks (tlPos+1, tlPos+2) are live in the window,
	// currently posMiddle bits away from their aligned position; every other
	// block, the outer window blocks included, is current in long tape.
	o := uint(blockBits - t.posMiddle)
	n := bits.OnesCount64(t.lo>>o | t.hi<<(64-o))
	for i, v := range t.long {
		if i == t.tlPos+1 || i == t.tlPos+2 {
			continue
		}
		n += bits.OnesCount32(v)
	}
	return n
}

// TapeSizeCells returns the total addressable tape size, in cells, spanned
// by the long tape's used range.
func (t *Tape) TapeSizeCells() int {
	return (t.tlHigh - t.tlLow + 1) * blockBits
}

// SizeLimitHit reports whether the most recent update failed because the
// long tape could not grow past its configured limit.
func (t *Tape) SizeLimitHit() bool { return t.sizeLimitHit }

// Halves returns the two 64-bit halves of the current window, for callers
// (e.g. the cycler decider) that need to record or compare tape_before
// snapshots.
func (t *Tape) Halves() (hi, lo uint64) { return t.hi, t.lo }

// SetHalves overwrites the two 64-bit halves of the window. Only the window
// bits change; posMiddle and the long tape are left as they are.
func (t *Tape) SetHalves(hi, lo uint64) { t.hi, t.lo = hi, lo }
