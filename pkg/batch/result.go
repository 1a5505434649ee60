package batch

import (
	"sync"

	"github.com/oisee/bbdecide/pkg/decider"
)

// Result aggregates per-status counters plus a capped list of retained
// undecided machines (spec §4.6, §6.5). Record and Merge are safe for
// concurrent use; each call takes the mutex.
type Result struct {
	mu sync.Mutex

	Total                uint64
	Halts                uint64
	NonHaltCycle         uint64
	EliminatedPreDecider map[string]uint64
	UndecidedByReason    map[string]uint64

	LimitUndecided int
	Undecided      []string // standard TM text of retained undecided machines
}

// NewResult returns an empty Result capping its retained undecided list at
// limitUndecided (0 = unlimited).
func NewResult(limitUndecided int) *Result {
	return &Result{
		EliminatedPreDecider: make(map[string]uint64),
		UndecidedByReason:    make(map[string]uint64),
		LimitUndecided:       limitUndecided,
	}
}

// Record classifies one machine's final Status into the aggregate counters.
// machineText is the standard TM text form, used only if the machine ends
// up in the retained undecided list.
func (r *Result) Record(status decider.Status, machineText string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(status, machineText)
}

func (r *Result) record(status decider.Status, machineText string) {
	r.Total++
	switch status.Kind {
	case decider.StatusHalts:
		r.Halts++
	case decider.StatusNonHalt:
		r.NonHaltCycle++
	case decider.StatusEliminatedPreDecider:
		r.EliminatedPreDecider[status.EliminatedRule]++
	case decider.StatusUndecided:
		r.UndecidedByReason[status.UndecidedReason.String()]++
		if r.LimitUndecided == 0 || len(r.Undecided) < r.LimitUndecided {
			r.Undecided = append(r.Undecided, machineText)
		}
	}
}

// Merge commutatively folds other into r. The retained undecided list is
// concatenated and truncated to LimitUndecided, oldest surplus discarded —
// spec §4.6's merge semantics. Order across workers is not meaningful, so
// "oldest" here just means "earlier in merge order".
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	other.mu.Lock()
	defer other.mu.Unlock()

	r.Total += other.Total
	r.Halts += other.Halts
	r.NonHaltCycle += other.NonHaltCycle
	for k, v := range other.EliminatedPreDecider {
		r.EliminatedPreDecider[k] += v
	}
	for k, v := range other.UndecidedByReason {
		r.UndecidedByReason[k] += v
	}
	r.Undecided = append(r.Undecided, other.Undecided...)
	if r.LimitUndecided > 0 && len(r.Undecided) > r.LimitUndecided {
		r.Undecided = r.Undecided[len(r.Undecided)-r.LimitUndecided:]
	}
}
