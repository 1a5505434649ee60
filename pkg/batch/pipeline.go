package batch

import (
	"sync"

	"github.com/oisee/bbdecide/pkg/decider"
	"github.com/oisee/bbdecide/pkg/enumerator"
	"github.com/oisee/bbdecide/pkg/predecider"
	"github.com/oisee/bbdecide/pkg/transition"
)

// PreDeciderMode selects whether and how the pre-decider runs ahead of the
// decider chain, mirroring the original's PreDeciderRun::DoNotRun /
// RunNormal / RunStartBRightOnly three-way choice.
type PreDeciderMode int

const (
	PreDeciderSkip PreDeciderMode = iota
	PreDeciderSimple
	PreDeciderStrict
)

// Chain is an ordered list of deciders; only machines left Undecided by one
// stage flow into the next (spec §4.6).
type Chain []decider.Decider

// classify runs t through the optional pre-decider and then the chain,
// returning the first decided Status, or the last stage's Undecided status
// if every stage runs out without deciding.
func classify(t *transition.Table, mode PreDeciderMode, chain Chain) (decider.Status, error) {
	if mode != PreDeciderSkip {
		out := predecider.Run(mode == PreDeciderStrict, t)
		if out.Halted {
			return decider.Status{Kind: decider.StatusHalts, Steps: 1}, nil
		}
		if out.Eliminated {
			return decider.Status{Kind: decider.StatusEliminatedPreDecider, EliminatedRule: out.Reason.String()}, nil
		}
	}

	var last decider.Status
	for _, d := range chain {
		status, err := d.Decide(t)
		if err != nil {
			return decider.Status{}, &decider.Error{DeciderName: d.ID().Name, MachineText: t.Text(), Msg: err.Error()}
		}
		last = status
		if status.Kind != decider.StatusUndecided {
			return status, nil
		}
	}
	return last, nil
}

// RunLinear is the single-threaded topology: one enumerator, one decider
// chain, no concurrency at all.
func RunLinear(enum enumerator.Enumerator, mode PreDeciderMode, chain Chain, cfg *Config) (*Result, error) {
	res := NewResult(cfg.LimitMachinesUndecided)
	for {
		batch, isLast, err := enum.NextBatch()
		if err != nil {
			return nil, err
		}
		for _, t := range batch {
			status, err := classify(t, mode, chain)
			if err != nil {
				return nil, err
			}
			res.Record(status, t.Text())
		}
		if isLast {
			break
		}
	}
	return res, nil
}

// safeEnumerator serializes concurrent NextBatch calls over one
// enumerator.Enumerator, so several goroutines can share a single
// generation stream.
type safeEnumerator struct {
	mu    sync.Mutex
	inner enumerator.Enumerator
	done  bool
}

func (s *safeEnumerator) next() ([]*transition.Table, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil, true, nil
	}
	batch, isLast, err := s.inner.NextBatch()
	if isLast {
		s.done = true
	}
	return batch, isLast, err
}

// RunThreadedProvider shards enumeration across NumWorkers goroutines that
// each pull batches and push them to one consumer goroutine, which runs the
// decider chain sequentially and owns the aggregate Result alone (so no
// locking is needed on the hot decide path) — spec §4.6's second topology.
func RunThreadedProvider(enum enumerator.Enumerator, mode PreDeciderMode, chain Chain, cfg *Config) (*Result, error) {
	numWorkers := resolveWorkerCount(cfg)
	safe := &safeEnumerator{inner: enum}
	batches := make(chan []*transition.Table, numWorkers*2)
	errs := make(chan error, numWorkers)
	stop := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				b, isLast, err := safe.next()
				if err != nil {
					errs <- err
					return
				}
				if len(b) > 0 {
					select {
					case batches <- b:
					case <-stop:
						return
					}
				}
				if isLast {
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(batches)
	}()

	res := NewResult(cfg.LimitMachinesUndecided)
	var classifyErr error
	for b := range batches {
		for _, t := range b {
			status, err := classify(t, mode, chain)
			if err != nil {
				classifyErr = err
				break
			}
			res.record(status, t.Text())
		}
		if classifyErr != nil {
			break
		}
	}
	if classifyErr != nil {
		close(stop)
		for range batches {
			// drain so blocked producers (if any were mid-send before stop
			// closed) can still observe the channel closing and exit.
		}
		return nil, classifyErr
	}
	select {
	case err := <-errs:
		return nil, err
	default:
	}
	return res, nil
}

// RunThreadedDeciders runs NumWorkers independent (enumerate -> decide)
// loops against the shared enumerator, each owning its own decider
// instances and its own Result, merged at the end — spec §4.6's third
// topology. newChain is called once per worker so each gets its own tape
// buffers (pkg/decider's HaltDecider/CyclerDecider are not safe to share
// across goroutines, by design: they reuse one tape per instance).
func RunThreadedDeciders(enum enumerator.Enumerator, mode PreDeciderMode, newChain func() Chain, cfg *Config) (*Result, error) {
	numWorkers := resolveWorkerCount(cfg)
	safe := &safeEnumerator{inner: enum}
	final := NewResult(cfg.LimitMachinesUndecided)
	var mu sync.Mutex
	errs := make(chan error, numWorkers)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chain := newChain()
			local := NewResult(cfg.LimitMachinesUndecided)
			for {
				b, isLast, err := safe.next()
				if err != nil {
					errs <- err
					return
				}
				for _, t := range b {
					status, err := classify(t, mode, chain)
					if err != nil {
						errs <- err
						return
					}
					local.record(status, t.Text())
				}
				if isLast {
					break
				}
			}
			mu.Lock()
			final.Merge(local)
			mu.Unlock()
		}()
	}
	wg.Wait()

	select {
	case err := <-errs:
		return nil, err
	default:
	}
	return final, nil
}
