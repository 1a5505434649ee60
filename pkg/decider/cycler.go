package decider

import (
	"github.com/oisee/bbdecide/pkg/tape"
	"github.com/oisee/bbdecide/pkg/transition"
)

// CyclerConfig bounds a CyclerDecider run.
type CyclerConfig struct {
	StepLimit           uint64
	TapeSizeLimitBlocks int
}

type stepRecord struct {
	fieldID int
	dir     transition.Direction
	hi, lo  uint64
}

// cyclerInitCapacity is the initial capacity hint for a CyclerDecider's
// steps buffer, sized to cover most cycle-detectable machines without
// reallocation.
const cyclerInitCapacity = 10_000

// CyclerDecider proves non-termination by detecting an exact periodic
// repetition of (field id, tape neighborhood) — spec §4.3. Unlike
// HaltDecider it never uses self-ref acceleration: per-step fidelity is
// required for the cycle search to see every field transition.
type CyclerDecider struct {
	cfg    CyclerConfig
	tp     *tape.Tape
	steps  []stepRecord
	maps1d [][]int
}

// NewCyclerDecider returns a CyclerDecider with its own reusable buffers.
func NewCyclerDecider(cfg CyclerConfig) *CyclerDecider {
	d := &CyclerDecider{
		cfg:    cfg,
		tp:     tape.New(cfg.TapeSizeLimitBlocks),
		steps:  make([]stepRecord, 0, cyclerInitCapacity),
		maps1d: make([][]int, 2*(transition.MaxStates+1)),
	}
	return d
}

func (d *CyclerDecider) ID() ID { return IDCycler }

func (d *CyclerDecider) Decide(t *transition.Table) (Status, error) {
	d.tp.Clear()
	d.steps = d.steps[:0]
	for i := range d.maps1d {
		d.maps1d[i] = d.maps1d[i][:0]
	}

	state := 1
	symbol := uint8(0)
	var stepNo uint64

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

		hi, lo := d.tp.Halves()
		idx := len(d.steps)
		d.steps = append(d.steps, stepRecord{fieldID: field, dir: tr.Direction(), hi: hi, lo: lo})
		d.maps1d[field] = append(d.maps1d[field], idx)

		if !d.tp.UpdateSingleStep(tr) {
			return Status{
				Kind:            StatusUndecided,
				UndecidedReason: UndecidedTapeSizeLimit,
				UndecidedSteps:  stepNo,
				UndecidedCells:  d.tp.TapeSizeCells(),
			}, nil
		}

		state = int(tr.State())
		symbol = d.tp.CurrentSymbol()
		nextField := state*2 + int(symbol)

		visits := d.maps1d[nextField]
		if len(visits) >= 2 && (stepNo < 50 || d.halfWindowZero()) {
			if dist, ok := d.searchCycle(visits, int(stepNo)); ok {
				return Status{
					Kind:          StatusNonHalt,
					NonHaltReason: NonHaltCycle,
					Cycle:         Cycle{Step: stepNo, Distance: uint64(dist)},
				}, nil
			}
		}
	}
}

// halfWindowZero reports whether the current window's left or right half is
// entirely blank — the heuristic restricting cycle search, beyond the first
// 50 steps, to machines still hovering near the tape's origin.
func (d *CyclerDecider) halfWindowZero() bool {
	hi, lo := d.tp.Halves()
	return hi == 0 || lo == 0
}

// searchCycle looks for a prior visit of the about-to-be-entered field
// (nextFieldVisits, excluding the most recent) that starts an exact
// repeating block ending at the current step. idxNew is the 0-based index
// the new visit would occupy in d.steps (== len(d.steps), i.e. stepNo).
func (d *CyclerDecider) searchCycle(visits []int, idxNew int) (int, bool) {
	for k := len(visits) - 2; k >= 0; k-- {
		visitIdx := visits[k]
		dist := idxNew - visitIdx
		if dist > visitIdx {
			break
		}

		matched := true
		for j := 0; j < dist; j++ {
			if d.steps[visitIdx+j].fieldID != d.steps[visitIdx-dist+j].fieldID {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		start := d.steps[visitIdx-dist]
		curHi, curLo := d.tp.Halves()
		if start.hi == curHi && start.lo == curLo {
			return dist, true
		}

		minL, maxR := 0, 0
		pos := 0
		for j := 0; j < dist; j++ {
			if d.steps[visitIdx+j].dir == transition.DirRight {
				pos++
			} else {
				pos--
			}
			if pos < minL {
				minL = pos
			}
			if pos > maxR {
				maxR = pos
			}
		}
		if pos > 0 {
			maxR = 64
		} else if pos < 0 {
			minL = -63
		}

		hiMask, loMask := buildMask(minL, maxR)
		if start.hi&hiMask == curHi&hiMask && start.lo&loMask == curLo&loMask {
			return dist, true
		}
	}
	return 0, false
}

// buildMask returns the bitmask, split across the window's two halves,
// covering tape positions [minL, maxR] relative to the head (position 0 is
// lo's top bit; positive positions live in hi, negative ones in the rest
// of lo), clamped to the window's actual extent.
func buildMask(minL, maxR int) (hiMask, loMask uint64) {
	loMask = 1 << 63
	if maxR > 64 {
		maxR = 64
	}
	for p := 1; p <= maxR; p++ {
		hiMask |= 1 << uint(p-1)
	}
	if minL < -63 {
		minL = -63
	}
	for p := 1; p <= -minL; p++ {
		loMask |= 1 << uint(63-p)
	}
	return hiMask, loMask
}
