package tape

import (
	"testing"

	"github.com/oisee/bbdecide/pkg/transition"
)

func mustTr(t *testing.T, text string) transition.Transition {
	t.Helper()
	tr, err := transition.New(text)
	if err != nil {
		t.Fatalf("transition.New(%q): %v", text, err)
	}
	return tr
}

func TestClearIsBlank(t *testing.T) {
	tp := New(0)
	if tp.CurrentSymbol() != 0 {
		t.Errorf("fresh tape should read 0 at head")
	}
	if tp.CountOnes() != 0 {
		t.Errorf("fresh tape should have no ones")
	}
}

func TestSingleStepWriteAndMove(t *testing.T) {
	tp := New(0)
	tr := mustTr(t, "1RB")
	if !tp.UpdateSingleStep(tr) {
		t.Fatalf("update failed")
	}
	if tp.CountOnes() != 1 {
		t.Errorf("expected exactly one 1 written, got %d", tp.CountOnes())
	}
	// head moved right, so the cell just written is now behind (left of)
	// the new head, which should read blank.
	if tp.CurrentSymbol() != 0 {
		t.Errorf("new head cell should be blank")
	}
}

func TestRightLeftRoundTrip(t *testing.T) {
	tp := New(0)
	r := mustTr(t, "1RB")
	l := mustTr(t, "0LB")
	tp.UpdateSingleStep(r)
	tp.UpdateSingleStep(l)
	if tp.CurrentSymbol() != 1 {
		t.Errorf("moving right then left should return to the written 1, got %d", tp.CurrentSymbol())
	}
}

func TestBlockSwapAcrossBoundary(t *testing.T) {
	tp := New(0)
	r := mustTr(t, "1RB")
	// Walk right exactly swapMargin times to force one block swap.
	for i := 0; i < swapMargin; i++ {
		if !tp.UpdateSingleStep(r) {
			t.Fatalf("update failed at step %d", i)
		}
	}
	if tp.CountOnes() != swapMargin {
		t.Errorf("expected %d ones after %d right writes, got %d", swapMargin, swapMargin, tp.CountOnes())
	}
	if tp.TapeSizeCells() <= blockBits*blocksInWindow {
		// a right swap should have extended the used range by at least one block
		t.Errorf("expected tape to have grown past the initial window, got %d cells", tp.TapeSizeCells())
	}
}

func TestSizeLimitReached(t *testing.T) {
	tp := New(blocksInWindow + 1) // barely more than one window's worth of blocks
	r := mustTr(t, "1RB")
	ok := true
	steps := 0
	for ok && steps < 10_000 {
		ok = tp.UpdateSingleStep(r)
		steps++
	}
	if ok {
		t.Fatalf("expected tape to eventually hit its size limit")
	}
	if !tp.SizeLimitHit() {
		t.Errorf("SizeLimitHit() should be true after a failed update")
	}
}

func TestSelfRefAcceleratedMatchesManualSteps(t *testing.T) {
	tr := mustTr(t, "1RB")
	trSelfRef := tr.WithSelfRef()

	// Construct a window where the head and everything ahead of it (to the
	// right) already reads 1, the precondition under which a genuine
	// self-referencing transition is reached: the field's (state, symbol)
	// already matches what this transition would write.
	const hi, lo = ^uint64(0), uint64(1) << 63

	tp1 := New(0)
	tp2 := New(0)
	tp1.SetHalves(hi, lo)
	tp2.SetHalves(hi, lo)

	jump := tp2.UpdateSelfRefAccelerated(trSelfRef)
	if jump < 1 {
		t.Fatalf("expected a positive jump, got %d", jump)
	}
	for i := 0; i < jump; i++ {
		tp1.UpdateSingleStep(tr)
	}

	h1, l1 := tp1.Halves()
	h2, l2 := tp2.Halves()
	if h1 != h2 || l1 != l2 {
		t.Errorf("accelerated tape diverged from manual steps: (%x,%x) vs (%x,%x)", h1, l1, h2, l2)
	}
}
