// Package batch implements the decider-chain dispatch, worker topologies,
// result aggregation, and checkpointing described in spec §4.6, §5, §6.1.
package batch

import "runtime"

// Config holds the recognized run options (spec §6.1). Construct with
// NewConfig and functional options; zero-value fields are never valid on
// their own, so always go through NewConfig.
type Config struct {
	NStates int

	StepLimitHalt    uint64
	StepLimitCycler  uint64
	StepLimitBouncer uint64 // accepted for config compatibility; no Bouncer decider exists (DESIGN.md)

	TapeSizeLimitBlocks int // 0 = unlimited

	// AcceleratedStepLimitIterations caps self-ref accelerated jumps per
	// machine before HaltDecider falls back to single-stepping; 0 = unlimited.
	AcceleratedStepLimitIterations uint64

	MachinesLimit          uint64 // 0 = unlimited
	LimitMachinesUndecided int

	EnumeratorFullBatchSizeRequest    uint64
	EnumeratorReducedBatchSizeRequest uint64

	// CPUUtilization is the percentage of logical CPUs to use when
	// NumWorkers is left at 0 (auto). 100 means one worker per logical CPU.
	CPUUtilization int
	// NumWorkers, when > 0, overrides CPUUtilization-based sizing outright.
	NumWorkers int

	IDCalcForward bool

	// Verbose gates progress-reporting output (WorkerPool's ticker line),
	// matching the teacher's Verbose-gated fmt.Printf convention.
	Verbose bool

	// CheckpointPath, if non-empty, is where WorkerPool.Run periodically
	// writes a Checkpoint snapshot of progress so far.
	CheckpointPath string
	// CheckpointInterval is the number of completed batches between
	// automatic checkpoint writes; 0 disables automatic checkpointing.
	CheckpointInterval int
}

// Option mutates a Config during construction.
type Option func(*Config)

// NewConfig returns a Config with sane defaults, then applies opts in order.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		NStates:                           4,
		StepLimitHalt:                     1_000_000,
		StepLimitCycler:                   1_000_000,
		StepLimitBouncer:                  1_000_000,
		TapeSizeLimitBlocks:               0,
		AcceleratedStepLimitIterations:    0,
		MachinesLimit:                     0,
		LimitMachinesUndecided:            10_000,
		EnumeratorFullBatchSizeRequest:    1 << 16,
		EnumeratorReducedBatchSizeRequest: 1 << 12,
		CPUUtilization:                    100,
		NumWorkers:                        0,
		IDCalcForward:                     true,
		Verbose:                           false,
		CheckpointPath:                    "",
		CheckpointInterval:                0,
	}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

func WithNStates(n int) Option                { return func(c *Config) { c.NStates = n } }
func WithStepLimitHalt(v uint64) Option       { return func(c *Config) { c.StepLimitHalt = v } }
func WithStepLimitCycler(v uint64) Option     { return func(c *Config) { c.StepLimitCycler = v } }
func WithStepLimitBouncer(v uint64) Option    { return func(c *Config) { c.StepLimitBouncer = v } }
func WithTapeSizeLimitBlocks(v int) Option    { return func(c *Config) { c.TapeSizeLimitBlocks = v } }
func WithMachinesLimit(v uint64) Option       { return func(c *Config) { c.MachinesLimit = v } }
func WithLimitMachinesUndecided(v int) Option { return func(c *Config) { c.LimitMachinesUndecided = v } }
func WithEnumeratorFullBatchSizeRequest(v uint64) Option {
	return func(c *Config) { c.EnumeratorFullBatchSizeRequest = v }
}
func WithEnumeratorReducedBatchSizeRequest(v uint64) Option {
	return func(c *Config) { c.EnumeratorReducedBatchSizeRequest = v }
}
func WithCPUUtilization(v int) Option     { return func(c *Config) { c.CPUUtilization = v } }
func WithNumWorkers(v int) Option         { return func(c *Config) { c.NumWorkers = v } }
func WithIDCalcForward(v bool) Option     { return func(c *Config) { c.IDCalcForward = v } }
func WithVerbose(v bool) Option           { return func(c *Config) { c.Verbose = v } }
func WithCheckpointPath(v string) Option  { return func(c *Config) { c.CheckpointPath = v } }
func WithCheckpointInterval(v int) Option { return func(c *Config) { c.CheckpointInterval = v } }
func WithAcceleratedStepLimitIterations(v uint64) Option {
	return func(c *Config) { c.AcceleratedStepLimitIterations = v }
}

// resolveWorkerCount turns NumWorkers/CPUUtilization into an actual worker
// count: an explicit positive NumWorkers always wins; otherwise one worker
// per logical CPU, scaled down by CPUUtilization.
func resolveWorkerCount(cfg *Config) int {
	if cfg.NumWorkers > 0 {
		return cfg.NumWorkers
	}
	n := runtime.NumCPU()
	if cfg.CPUUtilization > 0 && cfg.CPUUtilization < 100 {
		n = n * cfg.CPUUtilization / 100
	}
	if n < 1 {
		n = 1
	}
	return n
}
