// Package decider implements the Halt and Cycler deciders (spec §4.2, §4.3)
// plus the status/error vocabulary shared by the whole batch pipeline.
package decider

import (
	"fmt"

	"github.com/oisee/bbdecide/pkg/transition"
)

// StatusKind identifies which branch of Status is populated.
type StatusKind int

const (
	// StatusUndetermined is the zero value; never returned by a real decider.
	StatusUndetermined StatusKind = iota
	StatusHalts
	StatusNonHalt
	StatusUndecided
	StatusEliminatedPreDecider
)

func (k StatusKind) String() string {
	switch k {
	case StatusHalts:
		return "Halts"
	case StatusNonHalt:
		return "NonHalt"
	case StatusUndecided:
		return "Undecided"
	case StatusEliminatedPreDecider:
		return "EliminatedPreDecider"
	default:
		return "Undetermined"
	}
}

// UndecidedReason names why a decider could not resolve a machine.
type UndecidedReason int

const (
	UndecidedUndefined UndecidedReason = iota
	UndecidedStepLimit
	UndecidedTapeSizeLimit
	UndecidedTapeLeftBoundReached
	UndecidedTapeRightBoundReached
)

func (r UndecidedReason) String() string {
	switch r {
	case UndecidedStepLimit:
		return "StepLimit"
	case UndecidedTapeSizeLimit:
		return "TapeSizeLimit"
	case UndecidedTapeLeftBoundReached:
		return "TapeLeftBoundReached"
	case UndecidedTapeRightBoundReached:
		return "TapeRightBoundReached"
	default:
		return "Undefined"
	}
}

// NonHaltReason names why a decider proved a machine never halts.
type NonHaltReason int

const (
	NonHaltUndefined NonHaltReason = iota
	NonHaltCycle
)

// Cycle describes a proven periodic tape: the machine revisits the same
// field id, direction, and masked tape content after exactly d further steps.
type Cycle struct {
	Step     uint64
	Distance uint64
}

// Status is a struct-of-fields sum type (spec §9's "prefer a small sum type
// over dynamic dispatch" guidance): exactly one of the payload groups below
// is meaningful, selected by Kind.
type Status struct {
	Kind StatusKind

	// StatusHalts
	Steps uint64

	// StatusNonHalt
	NonHaltReason NonHaltReason
	Cycle         Cycle

	// StatusUndecided
	UndecidedReason UndecidedReason
	UndecidedSteps  uint64
	UndecidedCells  int

	// StatusEliminatedPreDecider
	EliminatedRule string
}

func (s Status) String() string {
	switch s.Kind {
	case StatusHalts:
		return fmt.Sprintf("Halts(%d)", s.Steps)
	case StatusNonHalt:
		return fmt.Sprintf("NonHalt(Cycle{step:%d, distance:%d})", s.Cycle.Step, s.Cycle.Distance)
	case StatusUndecided:
		return fmt.Sprintf("Undecided(%s, steps:%d, cells:%d)", s.UndecidedReason, s.UndecidedSteps, s.UndecidedCells)
	case StatusEliminatedPreDecider:
		return fmt.Sprintf("EliminatedPreDecider(%s)", s.EliminatedRule)
	default:
		return "Undetermined"
	}
}

// IsDecided reports whether this status is a final outcome (not Undecided).
func (s Status) IsDecided() bool { return s.Kind != StatusUndecided && s.Kind != StatusUndetermined }

// ID names a decider the way the original's decider table does: two
// constants may legitimately share a numeric id (Cycler and Bouncer both
// carry id 20 upstream; spec §9 directs preserving that as-is rather than
// "fixing" it).
type ID struct {
	Num  int
	Name string
}

func (id ID) String() string { return fmt.Sprintf("%s(%d)", id.Name, id.Num) }

var (
	IDHold    = ID{10, "Hold"}
	IDCycler  = ID{20, "Cycler"}
	IDBouncer = ID{20, "Bouncer"}
)

// Decider is the common interface every decider satisfies, run standalone
// or chained by pkg/batch.
type Decider interface {
	ID() ID
	Decide(t *transition.Table) (Status, error)
}

// Error reports a decider invariant violated on a specific machine — spec
// §7's DeciderError, surfaced to end the pipeline rather than silently
// miscounted.
type Error struct {
	DeciderName string
	MachineText string
	Msg         string
}

func (e *Error) Error() string {
	return fmt.Sprintf("decider %s: machine %s: %s", e.DeciderName, e.MachineText, e.Msg)
}
