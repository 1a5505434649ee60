package enumerator

import (
	"fmt"

	"github.com/oisee/bbdecide/pkg/transition"
)

// Full generates all (4N+1)^(2N) machines for N states by positional
// counting over the fixed per-field variant set (states ascending,
// direction {L,R}, symbol {0,1}, halt last) — spec §4.5, §6.4's same
// variant ordering. Intended for comparison/reference against Reduced, not
// for production-scale runs at N=5.
type Full struct {
	n        int
	p        uint64 // 4n+1, variant count per field
	total    uint64 // p^(2n)
	variants []transition.Transition

	idx           uint64
	batchSize     uint64
	machinesLimit uint64 // 0 = unlimited
}

// NewFull returns a Full enumerator for n states. batchSizeRequest is
// rounded down to a multiple of p^2 so each batch is a whole outer-two-field
// sweep; machinesLimit caps total emission (0 = unlimited).
func NewFull(n int, batchSizeRequest, machinesLimit uint64) (*Full, error) {
	if n < 1 || n > transition.MaxStates {
		return nil, &Error{Msg: fmt.Sprintf("n_states %d out of range [1,%d]", n, transition.MaxStates)}
	}
	p := uint64(4*n + 1)
	total := ipow(p, uint64(2*n))

	f := &Full{n: n, p: p, total: total, variants: buildVariants(n), machinesLimit: machinesLimit}

	pSquared := p * p
	bs := (batchSizeRequest / pSquared) * pSquared
	if bs == 0 {
		bs = pSquared
	}
	f.batchSize = bs
	return f, nil
}

func (f *Full) TotalApprox() uint64 {
	if f.machinesLimit > 0 && f.machinesLimit < f.total {
		return f.machinesLimit
	}
	return f.total
}

// EliminatedCounts is always empty: Full performs no inline elimination,
// only positional counting over the complete variant space.
func (f *Full) EliminatedCounts() map[string]uint64 { return map[string]uint64{} }

// NextBatch decodes the next contiguous run of global indices into tables.
func (f *Full) NextBatch() ([]*transition.Table, bool, error) {
	end := f.idx + f.batchSize
	if end > f.total {
		end = f.total
	}
	if f.machinesLimit > 0 && end > f.machinesLimit {
		end = f.machinesLimit
	}
	if end < f.idx {
		end = f.idx
	}

	batch := make([]*transition.Table, 0, end-f.idx)
	for g := f.idx; g < end; g++ {
		batch = append(batch, f.decode(g))
	}
	f.idx = end

	isLast := f.idx >= f.total || (f.machinesLimit > 0 && f.idx >= f.machinesLimit)
	return batch, isLast, nil
}

// decode turns a global index into a table: digit i (base p, least
// significant first) selects field i's variant, matching the forward
// canonical-id field ordering in pkg/transition.
func (f *Full) decode(g uint64) *transition.Table {
	table := transition.NewTable(f.n)
	for i := 0; i < 2*f.n; i++ {
		digit := g % f.p
		g /= f.p
		table.SetTransition(2+i, f.variantAt(digit))
	}
	return table
}

func (f *Full) variantAt(pos uint64) transition.Transition {
	if int(pos) == len(f.variants) {
		return transition.Halt
	}
	return f.variants[pos]
}

// buildVariants returns the p-1 non-halt variants in the fixed order
// (states ascending, direction {L,R}, symbol {0,1}); the halt variant is
// represented separately (transition.Halt) rather than stored here.
func buildVariants(n int) []transition.Transition {
	variants := make([]transition.Transition, 0, 4*n)
	for state := 1; state <= n; state++ {
		for _, dir := range []byte{'L', 'R'} {
			for _, sym := range []byte{'0', '1'} {
				text := string([]byte{sym, dir, transition.StateToChar(uint8(state))})
				tr, err := transition.New(text)
				if err != nil {
					panic(err)
				}
				variants = append(variants, tr)
			}
		}
	}
	return variants
}

func ipow(base, exp uint64) uint64 {
	result := uint64(1)
	for i := uint64(0); i < exp; i++ {
		result *= base
	}
	return result
}
