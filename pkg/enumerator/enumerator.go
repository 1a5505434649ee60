// Package enumerator generates candidate transition tables: the full
// positional sweep (for comparison) and the reduced, construction-pruned
// stream that feeds the batch pipeline in practice (spec §4.5).
package enumerator

import "github.com/oisee/bbdecide/pkg/transition"

// Enumerator is a stateful, pull-based source of machine batches.
type Enumerator interface {
	// NextBatch returns up to the configured batch size of candidate
	// tables, and whether this is the final (possibly empty) batch.
	NextBatch() (batch []*transition.Table, isLast bool, err error)
	// TotalApprox estimates the total number of machines this enumerator
	// will emit, when known in advance (0 if not, e.g. Reduced's inline
	// pruning makes an exact count impractical to precompute cheaply).
	TotalApprox() uint64
	// EliminatedCounts reports, per elimination rule name, how many
	// candidates this enumerator discarded in-line during construction
	// rather than ever handing to a decider. Identities are not kept, only
	// the per-rule counts.
	EliminatedCounts() map[string]uint64
}

// Error reports the data-provider failing to produce a batch: spec §7's
// DataProviderError.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return "enumerator: " + e.Msg }
