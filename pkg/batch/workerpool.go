package batch

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oisee/bbdecide/pkg/enumerator"
)

// WorkerPool runs a decider chain across a shared enumerator with
// NumWorkers goroutines, tracking progress with atomic counters and (when
// Verbose) a ticker-driven rate/ETA reporter, mirroring the teacher's
// search.WorkerPool.
type WorkerPool struct {
	cfg *Config

	checked   atomic.Uint64 // machines classified so far
	completed atomic.Uint64 // batches completed so far
}

// NewWorkerPool returns a WorkerPool governed by cfg.
func NewWorkerPool(cfg *Config) *WorkerPool {
	return &WorkerPool{cfg: cfg}
}

// Stats returns the running machine/batch counts.
func (wp *WorkerPool) Stats() (checked, completed uint64) {
	return wp.checked.Load(), wp.completed.Load()
}

// Run pulls batches from enum across resolveWorkerCount(cfg) goroutines,
// classifying each machine with its own Chain (built by newChain, called
// once per worker so each gets its own tape buffers), merging into one
// Result at the end. If cfg.CheckpointPath is set, a snapshot is written
// every cfg.CheckpointInterval completed batches.
func (wp *WorkerPool) Run(enum enumerator.Enumerator, mode PreDeciderMode, newChain func() Chain) (*Result, error) {
	numWorkers := resolveWorkerCount(wp.cfg)
	safe := &safeEnumerator{inner: enum}
	final := NewResult(wp.cfg.LimitMachinesUndecided)
	var mu sync.Mutex
	errs := make(chan error, numWorkers)

	done := make(chan struct{})
	startTime := time.Now()
	if wp.cfg.Verbose {
		go wp.reportProgress(done, startTime, enum.TotalApprox())
	}

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chain := newChain()
			local := NewResult(wp.cfg.LimitMachinesUndecided)
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
					wp.checked.Add(1)
				}
				wp.completed.Add(1)
				wp.maybeCheckpoint(&mu, final, local)
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
	close(done)

	select {
	case err := <-errs:
		return nil, err
	default:
	}
	return final, nil
}

// maybeCheckpoint writes a snapshot of final merged with local's progress so
// far, if CheckpointPath/CheckpointInterval call for one on this batch.
func (wp *WorkerPool) maybeCheckpoint(mu *sync.Mutex, final, local *Result) {
	if wp.cfg.CheckpointPath == "" || wp.cfg.CheckpointInterval <= 0 {
		return
	}
	if wp.completed.Load()%uint64(wp.cfg.CheckpointInterval) != 0 {
		return
	}
	mu.Lock()
	snapshot := NewResult(wp.cfg.LimitMachinesUndecided)
	snapshot.Merge(final)
	snapshot.Merge(local)
	mu.Unlock()
	_ = SaveCheckpoint(wp.cfg.CheckpointPath, CheckpointFromResult(wp.cfg.NStates, snapshot))
}

// reportProgress prints a rate/ETA line every 10 seconds until done fires,
// then a final summary line.
func (wp *WorkerPool) reportProgress(done chan struct{}, startTime time.Time, totalApprox uint64) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	var lastChecked uint64
	lastTime := startTime
	for {
		select {
		case <-done:
			elapsed := time.Since(startTime)
			checked := wp.checked.Load()
			var rate float64
			if elapsed.Seconds() > 0 {
				rate = float64(checked) / elapsed.Seconds()
			}
			fmt.Printf("  [%s] %d machines | %.1fk checks/s avg | DONE\n",
				elapsed.Round(time.Second), checked, rate/1e3)
			return
		case <-ticker.C:
			now := time.Now()
			checked := wp.checked.Load()
			elapsed := now.Sub(startTime)

			dt := now.Sub(lastTime).Seconds()
			dc := checked - lastChecked
			var rate float64
			if dt > 0 {
				rate = float64(dc) / dt
			}
			lastChecked = checked
			lastTime = now

			eta := "..."
			if totalApprox > 0 && checked > 0 {
				remaining := time.Duration(float64(elapsed) * float64(totalApprox-checked) / float64(checked))
				eta = remaining.Round(time.Second).String()
			}

			fmt.Printf("  [%s] %d machines | %.1fk checks/s | ETA %s\n",
				elapsed.Round(time.Second), checked, rate/1e3, eta)
		}
	}
}
