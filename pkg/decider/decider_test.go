package decider

import (
	"testing"

	"github.com/oisee/bbdecide/pkg/transition"
)

func TestHaltDeciderBB3Max(t *testing.T) {
	d := NewHaltDecider(HaltConfig{StepLimit: 1000})
	status, err := d.Decide(transition.BB3Max.Table())
	if err != nil {
		t.Fatal(err)
	}
	if status.Kind != StatusHalts || status.Steps != 21 {
		t.Errorf("BB3-MAX: got %v, want Halts(21)", status)
	}
}

func TestHaltDeciderBB4Max(t *testing.T) {
	d := NewHaltDecider(HaltConfig{StepLimit: 1000})
	status, err := d.Decide(transition.BB4Max.Table())
	if err != nil {
		t.Fatal(err)
	}
	if status.Kind != StatusHalts || status.Steps != 107 {
		t.Errorf("BB4-MAX: got %v, want Halts(107)", status)
	}
}

func TestHaltDeciderBB5Max(t *testing.T) {
	d := NewHaltDecider(HaltConfig{StepLimit: 100_000_000})
	status, err := d.Decide(transition.BB5Max.Table())
	if err != nil {
		t.Fatal(err)
	}
	if status.Kind != StatusHalts || status.Steps != 47_176_870 {
		t.Errorf("BB5-MAX: got %v, want Halts(47176870)", status)
	}
}

func TestHaltDeciderStepLimit(t *testing.T) {
	d := NewHaltDecider(HaltConfig{StepLimit: 10})
	status, err := d.Decide(transition.BB4Max.Table())
	if err != nil {
		t.Fatal(err)
	}
	if status.Kind != StatusUndecided || status.UndecidedReason != UndecidedStepLimit {
		t.Errorf("expected Undecided(StepLimit), got %v", status)
	}
}

func TestCyclerDeciderMatchesHaltOnNotableMachines(t *testing.T) {
	d := NewCyclerDecider(CyclerConfig{StepLimit: 5000})
	for _, nm := range []transition.NotableMachine{transition.BB3Max, transition.BB4Max} {
		status, err := d.Decide(nm.Table())
		if err != nil {
			t.Fatal(err)
		}
		if status.Kind != StatusHalts || status.Steps != uint64(nm.Steps()) {
			t.Errorf("cycler on %v: got %v, want Halts(%d)", nm, status, nm.Steps())
		}
	}
}

func TestCyclerDeciderDetectsNonHaltBB4Id1166084(t *testing.T) {
	// A catalogued 4-state machine (BB4 candidate id 1,166,084) proven
	// non-halting by an exact cycle, not merely bounded by a step limit.
	table, err := transition.ParseTable("1RB1LD_1RC---_1LC0RA_0RA0RA")
	if err != nil {
		t.Fatal(err)
	}
	d := NewCyclerDecider(CyclerConfig{StepLimit: 5000})
	status, err := d.Decide(table)
	if err != nil {
		t.Fatal(err)
	}
	if status.Kind != StatusNonHalt || status.NonHaltReason != NonHaltCycle {
		t.Errorf("expected NonHalt(Cycle), got %v", status)
	}
}

func TestCyclerDeciderHalts107AtStepLimit5000(t *testing.T) {
	table, err := transition.ParseTable("1RC1LC_---1LD_1LA0LB_1RD0RA_0RA0RA")
	if err != nil {
		t.Fatal(err)
	}
	d := NewCyclerDecider(CyclerConfig{StepLimit: 5000})
	status, err := d.Decide(table)
	if err != nil {
		t.Fatal(err)
	}
	if status.Kind != StatusHalts || status.Steps != 107 {
		t.Errorf("expected Halts(107), got %v", status)
	}
}
