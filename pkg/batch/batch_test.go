package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oisee/bbdecide/pkg/decider"
	"github.com/oisee/bbdecide/pkg/enumerator"
	"github.com/oisee/bbdecide/pkg/transition"
)

func newChain(cfg *Config) Chain {
	return Chain{
		decider.NewHaltDecider(decider.HaltConfig{
			StepLimit:                      cfg.StepLimitHalt,
			TapeSizeLimitBlocks:            cfg.TapeSizeLimitBlocks,
			AcceleratedStepLimitIterations: cfg.AcceleratedStepLimitIterations,
		}),
		decider.NewCyclerDecider(decider.CyclerConfig{StepLimit: cfg.StepLimitCycler, TapeSizeLimitBlocks: cfg.TapeSizeLimitBlocks}),
	}
}

func TestClassifySingleMachine(t *testing.T) {
	cfg := NewConfig(WithStepLimitHalt(1000), WithStepLimitCycler(1000))
	chain := newChain(cfg)
	status, err := classify(transition.BB3Max.Table(), PreDeciderSimple, chain)
	if err != nil {
		t.Fatal(err)
	}
	if status.Kind != decider.StatusHalts || status.Steps != 21 {
		t.Errorf("got %v, want Halts(21)", status)
	}
}

func TestClassifyPreDeciderElimination(t *testing.T) {
	table, err := transition.ParseTable("0RA---")
	if err != nil {
		t.Fatal(err)
	}
	cfg := NewConfig()
	status, err := classify(table, PreDeciderSimple, newChain(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if status.Kind != decider.StatusEliminatedPreDecider || status.EliminatedRule != "StartRecursive" {
		t.Errorf("got %v, want EliminatedPreDecider(StartRecursive)", status)
	}
}

func TestRunLinearMatchesTotal(t *testing.T) {
	enum, err := enumerator.NewFull(1, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	cfg := NewConfig(WithStepLimitHalt(1000), WithStepLimitCycler(1000))
	res, err := RunLinear(enum, PreDeciderSimple, newChain(cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 25 {
		t.Errorf("Total = %d, want 25 (5^2 machines for N=1)", res.Total)
	}
}

func TestRunThreadedProviderMatchesLinear(t *testing.T) {
	enumA, _ := enumerator.NewFull(1, 5, 0)
	enumB, _ := enumerator.NewFull(1, 5, 0)
	cfg := NewConfig(WithStepLimitHalt(1000), WithStepLimitCycler(1000), WithNumWorkers(4))

	want, err := RunLinear(enumA, PreDeciderSimple, newChain(cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := RunThreadedProvider(enumB, PreDeciderSimple, newChain(cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != want.Total || got.Halts != want.Halts {
		t.Errorf("threaded provider result diverged: got %+v, want total=%d halts=%d", got, want.Total, want.Halts)
	}
}

func TestRunThreadedDecidersMatchesLinear(t *testing.T) {
	enumA, _ := enumerator.NewFull(1, 5, 0)
	enumB, _ := enumerator.NewFull(1, 5, 0)
	cfg := NewConfig(WithStepLimitHalt(1000), WithStepLimitCycler(1000), WithNumWorkers(4))

	want, err := RunLinear(enumA, PreDeciderSimple, newChain(cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := RunThreadedDeciders(enumB, PreDeciderSimple, func() Chain { return newChain(cfg) }, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != want.Total || got.Halts != want.Halts {
		t.Errorf("threaded deciders result diverged: got %+v, want total=%d halts=%d", got, want.Total, want.Halts)
	}
}

func TestWorkerPoolMatchesLinear(t *testing.T) {
	enumA, _ := enumerator.NewFull(1, 5, 0)
	enumB, _ := enumerator.NewFull(1, 5, 0)
	cfg := NewConfig(WithStepLimitHalt(1000), WithStepLimitCycler(1000), WithNumWorkers(4))

	want, err := RunLinear(enumA, PreDeciderSimple, newChain(cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := NewWorkerPool(cfg).Run(enumB, PreDeciderSimple, func() Chain { return newChain(cfg) })
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != want.Total || got.Halts != want.Halts {
		t.Errorf("worker pool result diverged: got %+v, want total=%d halts=%d", got, want.Total, want.Halts)
	}
}

func TestWorkerPoolStatsAdvance(t *testing.T) {
	enum, _ := enumerator.NewFull(1, 5, 0)
	cfg := NewConfig(WithStepLimitHalt(1000), WithStepLimitCycler(1000), WithNumWorkers(2))
	wp := NewWorkerPool(cfg)
	res, err := wp.Run(enum, PreDeciderSimple, func() Chain { return newChain(cfg) })
	if err != nil {
		t.Fatal(err)
	}
	checked, completed := wp.Stats()
	if checked != uint64(res.Total) {
		t.Errorf("checked = %d, want %d", checked, res.Total)
	}
	if completed == 0 {
		t.Errorf("expected at least one completed batch")
	}
}

func TestWorkerPoolWritesCheckpointAtInterval(t *testing.T) {
	enum, _ := enumerator.NewFull(2, 5, 0)
	path := filepath.Join(t.TempDir(), "ckpt.gob")
	cfg := NewConfig(WithStepLimitHalt(1000), WithStepLimitCycler(1000), WithNumWorkers(1),
		WithCheckpointPath(path), WithCheckpointInterval(1))
	if _, err := NewWorkerPool(cfg).Run(enum, PreDeciderSimple, func() Chain { return newChain(cfg) }); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected a checkpoint file to be written: %v", err)
	}
}

func TestResultMergeCapsUndecided(t *testing.T) {
	a := NewResult(3)
	b := NewResult(3)
	for i := 0; i < 2; i++ {
		a.Record(decider.Status{Kind: decider.StatusUndecided, UndecidedReason: decider.UndecidedStepLimit}, "a")
	}
	for i := 0; i < 2; i++ {
		b.Record(decider.Status{Kind: decider.StatusUndecided, UndecidedReason: decider.UndecidedStepLimit}, "b")
	}
	a.Merge(b)
	if len(a.Undecided) != 3 {
		t.Errorf("Undecided len = %d, want capped at 3", len(a.Undecided))
	}
	if a.Total != 4 {
		t.Errorf("Total = %d, want 4", a.Total)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	res := NewResult(10)
	res.Record(decider.Status{Kind: decider.StatusHalts, Steps: 21}, "")
	res.Record(decider.Status{Kind: decider.StatusUndecided, UndecidedReason: decider.UndecidedStepLimit}, "1RB---")

	ckpt := CheckpointFromResult(3, res)
	path := filepath.Join(t.TempDir(), "ckpt.gob")
	if err := SaveCheckpoint(path, ckpt); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Halts != 1 || loaded.MachinesProcessed != 2 {
		t.Errorf("loaded checkpoint mismatch: %+v", loaded)
	}
	if len(loaded.UndecidedMachines) != 1 || loaded.UndecidedMachines[0] != "1RB---" {
		t.Errorf("undecided machines not round-tripped: %+v", loaded.UndecidedMachines)
	}
	_ = os.Remove(path)
}
