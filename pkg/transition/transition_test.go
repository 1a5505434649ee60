package transition

import "testing"

func TestNewAndText(t *testing.T) {
	cases := []string{"1RB", "0LC", "---"}
	for _, text := range cases {
		tr, err := New(text)
		if err != nil {
			t.Fatalf("New(%q): %v", text, err)
		}
		if got := tr.Text(); got != text {
			t.Errorf("New(%q).Text() = %q, want %q", text, got, text)
		}
	}
}

func TestHalt(t *testing.T) {
	tr, err := New("---")
	if err != nil {
		t.Fatal(err)
	}
	if !tr.IsHalt() {
		t.Errorf("--- should be IsHalt")
	}
	if tr.Text() != "---" {
		t.Errorf("halt text = %q, want ---", tr.Text())
	}
}

func TestDirectionAndSymbol(t *testing.T) {
	tr, err := New("1RB")
	if err != nil {
		t.Fatal(err)
	}
	if !tr.IsSymbolOne() {
		t.Errorf("expected symbol one")
	}
	if !tr.IsDirRight() {
		t.Errorf("expected direction right")
	}
	if tr.State() != 2 {
		t.Errorf("state = %d, want 2 (B)", tr.State())
	}
	if tr.ArrayID() != 5 {
		t.Errorf("array id = %d, want 5", tr.ArrayID())
	}
}

func TestHasNextStateA(t *testing.T) {
	tr, _ := New("0RA")
	if !tr.HasNextStateA() {
		t.Errorf("0RA should point to state A")
	}
	tr2, _ := New("0RB")
	if tr2.HasNextStateA() {
		t.Errorf("0RB should not point to state A")
	}
}

func TestParseTableRoundTrip(t *testing.T) {
	text := BB5Max.Table().Text()
	table, err := ParseTable(text)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	if got := table.Text(); got != text {
		t.Errorf("round trip: got %q want %q", got, text)
	}
	if table.NStates() != 5 {
		t.Errorf("NStates() = %d, want 5", table.NStates())
	}
}

func TestParseTableBB4(t *testing.T) {
	text := "1RB1LB_1LA0LC_---1LD_1RD0RA"
	table, err := ParseTable(text)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	start := table.TransitionStart()
	if start.Symbol() != 1 || !start.IsDirRight() || start.State() != 2 {
		t.Errorf("A0 = %v, want 1RB", start)
	}
}

func TestHasSelfReferencingTransition(t *testing.T) {
	// B1 1RB: state B, symbol 1, writes 1, direction right, targets B1 again.
	table, err := ParseTable("1RB---_1LA1RB")
	if err != nil {
		t.Fatal(err)
	}
	if !table.HasSelfReferencingTransition() {
		t.Errorf("expected a self-referencing transition")
	}
	b1 := table.TransitionForStateSymbol(2, 1)
	if !b1.IsSelfRef() {
		t.Errorf("B1 should be flagged self-referencing")
	}
}

func TestNoSelfReferencingTransition(t *testing.T) {
	table := BB3Max.Table()
	if table.HasSelfReferencingTransition() {
		t.Errorf("BB3-MAX has no self-referencing transition")
	}
}

func TestCanonicalIDForwardBackwardDiffer(t *testing.T) {
	table := BB4Max.Table()
	fwd := table.CanonicalID(true)
	bwd := table.CanonicalID(false)
	if fwd == bwd {
		t.Errorf("forward and backward canonical ids should generally differ for an asymmetric table")
	}
}

func TestCanonicalIDStartHalt(t *testing.T) {
	table, err := ParseTable("---0RA")
	if err != nil {
		t.Fatal(err)
	}
	if id := table.CanonicalID(true); id == 0 {
		// halt in the first field contributes the highest variant position (4n),
		// so id should be nonzero.
		t.Errorf("expected nonzero canonical id for start-halt table")
	}
}

func TestNotableMachines(t *testing.T) {
	for _, nm := range []NotableMachine{BB2Max, BB3Max, BB4Max, BB5Max} {
		table := nm.Table()
		if table.NStates() == 0 {
			t.Errorf("%v: expected nonzero NStates", nm)
		}
	}
}
