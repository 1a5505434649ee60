package batch

import (
	"encoding/gob"
	"os"
)

// Checkpoint captures enough state to report or resume a run. Table has
// unexported fields (deliberately, so the self-ref cache can't be forged by
// a caller — see pkg/transition), so undecided machines are carried as
// their standard TM text rather than gob-encoding the struct directly.
type Checkpoint struct {
	NStates              int
	MachinesProcessed    uint64
	Halts                uint64
	NonHaltCycle         uint64
	EliminatedPreDecider map[string]uint64
	UndecidedByReason    map[string]uint64
	UndecidedMachines    []string
}

// CheckpointFromResult snapshots a Result into a serializable Checkpoint.
func CheckpointFromResult(nStates int, r *Result) *Checkpoint {
	r.mu.Lock()
	defer r.mu.Unlock()

	elim := make(map[string]uint64, len(r.EliminatedPreDecider))
	for k, v := range r.EliminatedPreDecider {
		elim[k] = v
	}
	undecided := make(map[string]uint64, len(r.UndecidedByReason))
	for k, v := range r.UndecidedByReason {
		undecided[k] = v
	}
	machines := make([]string, len(r.Undecided))
	copy(machines, r.Undecided)

	return &Checkpoint{
		NStates:              nStates,
		MachinesProcessed:    r.Total,
		Halts:                r.Halts,
		NonHaltCycle:         r.NonHaltCycle,
		EliminatedPreDecider: elim,
		UndecidedByReason:    undecided,
		UndecidedMachines:    machines,
	}
}

// SaveCheckpoint writes ckpt to path via encoding/gob.
func SaveCheckpoint(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ckpt)
}

// LoadCheckpoint reads a Checkpoint previously written by SaveCheckpoint.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, err
	}
	return &ckpt, nil
}
