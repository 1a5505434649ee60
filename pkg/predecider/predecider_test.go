package predecider

import (
	"testing"

	"github.com/oisee/bbdecide/pkg/transition"
)

func mustTable(t *testing.T, text string) *transition.Table {
	t.Helper()
	table, err := transition.ParseTable(text)
	if err != nil {
		t.Fatalf("ParseTable(%q): %v", text, err)
	}
	return table
}

func TestStartHalt(t *testing.T) {
	table := mustTable(t, "---0RA")
	out := Run(false, table)
	if !out.Halted {
		t.Errorf("expected Halted, got %+v", out)
	}
}

func TestStartRecursiveEliminatesEmptyStartSelfReference(t *testing.T) {
	// 0RA: A0 points back to A itself, so the machine never leaves its
	// first field.
	table := mustTable(t, "0RA---")
	out := Run(false, table)
	if !out.Eliminated || out.Reason != ReasonStartRecursive {
		t.Errorf("expected Eliminated(StartRecursive), got %+v", out)
	}
}

func TestStrictRequiresBRightStart(t *testing.T) {
	table := mustTable(t, "1LB0RC_1LC1LA_---1RA")
	out := Run(true, table)
	if !out.Eliminated || out.Reason != ReasonNotStartStateBRight {
		t.Errorf("expected Eliminated(NotStartStateBRight), got %+v", out)
	}
}

func TestStrictAcceptsCanonicalStart(t *testing.T) {
	table := transition.BB3Max.Table()
	out := Run(true, table)
	if out.Eliminated && out.Reason == ReasonNotStartStateBRight {
		t.Errorf("BB3-MAX's start should pass the strict B-right check")
	}
}

func TestNotExactlyOneHaltCondition(t *testing.T) {
	// two halts
	table := mustTable(t, "1RB---_1LA---")
	out := Run(false, table)
	if !out.Eliminated || out.Reason != ReasonNotExactlyOneHaltCondition {
		t.Errorf("expected Eliminated(NotExactlyOneHaltCondition) for 2 halts, got %+v", out)
	}

	// zero halts
	table2 := mustTable(t, "1RB0LA_1LA0RB")
	out2 := Run(false, table2)
	if !out2.Eliminated || out2.Reason != ReasonNotExactlyOneHaltCondition {
		t.Errorf("expected Eliminated(NotExactlyOneHaltCondition) for 0 halts, got %+v", out2)
	}
}

func TestOnlyOneDirection(t *testing.T) {
	// both column-0 fields move right (or halt): A0=1RB, B0=1RA.
	table := mustTable(t, "1RB1LA_1RA---")
	out := Run(false, table)
	if !out.Eliminated || out.Reason != ReasonOnlyOneDirection {
		t.Errorf("expected Eliminated(OnlyOneDirection), got %+v", out)
	}
}

func TestWritesOnlyZero(t *testing.T) {
	// Every column-0 field writes 0; chosen so the start/second pair also
	// misses the simple-start-cycle rule, so this exercises WritesOnlyZero
	// specifically.
	table := mustTable(t, "0RB1RA_0LC1LB_0RA---")
	out := Run(false, table)
	if !out.Eliminated || out.Reason != ReasonWritesOnlyZero {
		t.Errorf("expected Eliminated(WritesOnlyZero), got %+v", out)
	}
}

func TestNotAllStatesUsed(t *testing.T) {
	// 3-state table where C is never reached from A0's chain.
	table := mustTable(t, "1RB1LB_1LA---_1RC1LC")
	out := Run(false, table)
	if !out.Eliminated || out.Reason != ReasonNotAllStatesUsed {
		t.Errorf("expected Eliminated(NotAllStatesUsed), got %+v", out)
	}
}

func TestNoDecisionForNotableMachines(t *testing.T) {
	for _, nm := range []transition.NotableMachine{transition.BB3Max, transition.BB4Max, transition.BB5Max} {
		table := nm.Table()
		out := Run(false, table)
		if !out.NoDecision() {
			t.Errorf("%v: expected NoDecision, got %+v", nm, out)
		}
	}
}
