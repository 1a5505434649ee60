package decider

import (
	"github.com/oisee/bbdecide/pkg/tape"
	"github.com/oisee/bbdecide/pkg/transition"
)

// HaltConfig bounds a HaltDecider run.
type HaltConfig struct {
	StepLimit           uint64
	TapeSizeLimitBlocks int // 0 means unlimited

	// AcceleratedStepLimitIterations caps how many self-ref accelerated
	// jumps a single Decide call may take before falling back to plain
	// single-stepping for the rest of the run. 0 means unlimited.
	AcceleratedStepLimitIterations uint64
}

// HaltDecider straightforwardly simulates a machine to Halts(k) or
// Undecided, using the tape's self-ref acceleration whenever the table has
// any self-referencing transition (spec §4.2).
type HaltDecider struct {
	cfg HaltConfig
	tp  *tape.Tape
}

// NewHaltDecider returns a HaltDecider with its own reusable tape buffer.
func NewHaltDecider(cfg HaltConfig) *HaltDecider {
	return &HaltDecider{cfg: cfg, tp: tape.New(cfg.TapeSizeLimitBlocks)}
}

func (d *HaltDecider) ID() ID { return IDHold }

// Decide runs the machine to completion, a step limit, or a tape-growth
// failure.
func (d *HaltDecider) Decide(t *transition.Table) (Status, error) {
	d.tp.Clear()
	accelerate := t.HasSelfReferencingTransition()

	state := 1 // A
	symbol := uint8(0)
	var stepNo uint64
	var accelIter uint64

	for {
		field := state*2 + int(symbol)
		tr := t.Transition(field)
		stepNo++

		if tr.IsHalt() {
			return Status{Kind: StatusHalts, Steps: stepNo}, nil
		}

		if stepNo >= d.cfg.StepLimit {
			return Status{
				Kind:            StatusUndecided,
				UndecidedReason: UndecidedStepLimit,
				UndecidedSteps:  stepNo,
				UndecidedCells:  d.tp.TapeSizeCells(),
			}, nil
		}

		var ok bool
		canAccelerate := accelerate && tr.IsSelfRef() &&
			(d.cfg.AcceleratedStepLimitIterations == 0 || accelIter < d.cfg.AcceleratedStepLimitIterations)
		if canAccelerate {
			jump := d.tp.UpdateSelfRefAccelerated(tr)
			ok = jump > 0
			if ok {
				stepNo += uint64(jump) - 1
				accelIter++
			}
		} else {
			ok = d.tp.UpdateSingleStep(tr)
		}
		if !ok {
			return Status{
				Kind:            StatusUndecided,
				UndecidedReason: UndecidedTapeSizeLimit,
				UndecidedSteps:  stepNo,
				UndecidedCells:  d.tp.TapeSizeCells(),
			}, nil
		}

		state = int(tr.State())
		symbol = d.tp.CurrentSymbol()
	}
}
