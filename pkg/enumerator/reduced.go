package enumerator

import (
	"sync"

	"github.com/oisee/bbdecide/pkg/predecider"
	"github.com/oisee/bbdecide/pkg/transition"
)

// Reduced generates only machines not eliminable by construction (spec
// §4.5): A0 fixed to 0RB/1RB, each subsequent field's target state bounded
// by the highest state introduced so far, exactly one halt transition
// placed, and a final lightweight pre-decider pass at each completed table
// (a simplification of inline-partial-table pruning: cheap enough here that
// pruning at the leaf instead of mid-construction costs little, since the
// construction-order constraints already remove the overwhelming majority
// of the full variant space before a table is ever completed).
type Reduced struct {
	n             int
	batchSize     uint64
	machinesLimit uint64
	idCalcForward bool

	ch    chan *transition.Table
	stop  chan struct{}
	once  sync.Once
	nEmit uint64

	mu         sync.Mutex
	eliminated map[string]uint64
}

// NewReduced returns a Reduced enumerator for n states, starting its
// background generator immediately. idCalcForward selects which of a
// table's two CanonicalID orderings is treated as its own id when deciding
// whether it or its mirror-ordering counterpart is the canonical
// representative to emit (see mirror dedup in fill).
func NewReduced(n int, batchSizeRequest, machinesLimit uint64, idCalcForward bool) (*Reduced, error) {
	if n < 1 || n > transition.MaxStates {
		return nil, &Error{Msg: "n_states out of range"}
	}
	bs := batchSizeRequest
	if bs == 0 {
		bs = 1024
	}
	r := &Reduced{
		n:             n,
		batchSize:     bs,
		machinesLimit: machinesLimit,
		idCalcForward: idCalcForward,
		ch:            make(chan *transition.Table, int(bs)),
		stop:          make(chan struct{}),
		eliminated:    make(map[string]uint64),
	}
	go r.generate()
	return r, nil
}

// TotalApprox is 0: the reduced stream's exact size depends on inline
// pruning decisions made during generation, not known cheaply in advance.
func (r *Reduced) TotalApprox() uint64 { return 0 }

// EliminatedCounts returns a copy of the per-rule rejection counts
// accumulated so far, including the pre-decider's named rules and
// "MirrorDuplicate" for the mirror-orientation dedup in fill.
func (r *Reduced) EliminatedCounts() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]uint64, len(r.eliminated))
	for k, v := range r.eliminated {
		out[k] = v
	}
	return out
}

func (r *Reduced) countEliminated(rule string) {
	r.mu.Lock()
	r.eliminated[rule]++
	r.mu.Unlock()
}

func (r *Reduced) NextBatch() ([]*transition.Table, bool, error) {
	batch := make([]*transition.Table, 0, r.batchSize)
	for uint64(len(batch)) < r.batchSize {
		t, ok := <-r.ch
		if !ok {
			return batch, true, nil
		}
		batch = append(batch, t)
		r.nEmit++
		if r.machinesLimit > 0 && r.nEmit >= r.machinesLimit {
			r.once.Do(func() { close(r.stop) })
			return batch, true, nil
		}
	}
	return batch, false, nil
}

// isCanonicalOrientation reports whether table's own-direction CanonicalID
// does not exceed its reverse-direction id, recognizing a machine's mirror
// image as the other of the two orderings and keeping only one
// representative per pair emitted.
func (r *Reduced) isCanonicalOrientation(table *transition.Table) bool {
	own := table.CanonicalID(r.idCalcForward)
	mirror := table.CanonicalID(!r.idCalcForward)
	return own <= mirror
}

func (r *Reduced) generate() {
	defer close(r.ch)

	starts := []string{"0RB", "1RB"}
	for _, s := range starts {
		a0, err := transition.New(s)
		if err != nil {
			panic(err)
		}
		table := transition.NewTable(r.n)
		table.SetTransition(2, a0)
		if !r.fill(table, 3, 2, 0) {
			return
		}
	}
}

// fill recursively assigns array ids [arrayID, 2*n+1], given that
// maxIntroduced states are reachable-by-construction so far and haltUsed
// halt transitions have been placed. Returns false once the caller should
// stop (machinesLimit reached downstream).
func (r *Reduced) fill(table *transition.Table, arrayID, maxIntroduced, haltUsed int) bool {
	if arrayID > 2*r.n+1 {
		if haltUsed != 1 || maxIntroduced != r.n {
			return true
		}
		out := predecider.Run(true, table)
		if !out.NoDecision() {
			r.countEliminated(out.Reason.String())
			return true
		}
		if !r.isCanonicalOrientation(table) {
			r.countEliminated("MirrorDuplicate")
			return true
		}
		select {
		case r.ch <- table.Clone():
		case <-r.stop:
			return false
		}
		return true
	}

	if haltUsed == 0 {
		halted := table.Clone()
		halted.SetTransition(arrayID, transition.Halt)
		if !r.fill(halted, arrayID+1, maxIntroduced, 1) {
			return false
		}
	}

	maxState := maxIntroduced + 1
	if maxState > r.n {
		maxState = r.n
	}
	for state := 1; state <= maxState; state++ {
		for _, dir := range []byte{'L', 'R'} {
			for _, sym := range []byte{'0', '1'} {
				text := string([]byte{sym, dir, transition.StateToChar(uint8(state))})
				tr, err := transition.New(text)
				if err != nil {
					panic(err)
				}
				next := table.Clone()
				next.SetTransition(arrayID, tr)
				nextMax := maxIntroduced
				if state > nextMax {
					nextMax = state
				}
				if !r.fill(next, arrayID+1, nextMax, haltUsed) {
					return false
				}
			}
		}
	}
	return true
}
