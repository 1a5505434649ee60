package main

import (
	"fmt"
	"os"

	"github.com/oisee/bbdecide/pkg/batch"
	"github.com/oisee/bbdecide/pkg/decider"
	"github.com/oisee/bbdecide/pkg/enumerator"
	"github.com/oisee/bbdecide/pkg/predecider"
	"github.com/oisee/bbdecide/pkg/transition"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bbdecide",
		Short: "Busy Beaver decider — classify Turing machines as Halts/NonHalt/Undecided",
	}

	var nStates int
	var machinesLimit uint64
	var stepLimitHalt uint64
	var stepLimitCycler uint64
	var tapeSizeLimit int
	var acceleratedStepLimitIterations uint64
	var limitUndecided int
	var numWorkers int
	var cpuUtilization int
	var idCalcForward bool
	var reduced bool
	var verbose bool
	var checkpointPath string
	var checkpointInterval int

	decideCmd := &cobra.Command{
		Use:   "decide",
		Short: "Enumerate and decide all candidate machines for n_states",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := batch.NewConfig(
				batch.WithNStates(nStates),
				batch.WithMachinesLimit(machinesLimit),
				batch.WithStepLimitHalt(stepLimitHalt),
				batch.WithStepLimitCycler(stepLimitCycler),
				batch.WithTapeSizeLimitBlocks(tapeSizeLimit),
				batch.WithAcceleratedStepLimitIterations(acceleratedStepLimitIterations),
				batch.WithLimitMachinesUndecided(limitUndecided),
				batch.WithNumWorkers(numWorkers),
				batch.WithCPUUtilization(cpuUtilization),
				batch.WithIDCalcForward(idCalcForward),
				batch.WithVerbose(verbose),
				batch.WithCheckpointPath(checkpointPath),
				batch.WithCheckpointInterval(checkpointInterval),
			)

			var enum enumerator.Enumerator
			var err error
			if reduced {
				enum, err = enumerator.NewReduced(nStates, cfg.EnumeratorReducedBatchSizeRequest, cfg.MachinesLimit, cfg.IDCalcForward)
			} else {
				enum, err = enumerator.NewFull(nStates, cfg.EnumeratorFullBatchSizeRequest, cfg.MachinesLimit)
			}
			if err != nil {
				return err
			}

			newChain := func() batch.Chain {
				return batch.Chain{
					decider.NewHaltDecider(decider.HaltConfig{
						StepLimit:                      cfg.StepLimitHalt,
						TapeSizeLimitBlocks:            cfg.TapeSizeLimitBlocks,
						AcceleratedStepLimitIterations: cfg.AcceleratedStepLimitIterations,
					}),
					decider.NewCyclerDecider(decider.CyclerConfig{StepLimit: cfg.StepLimitCycler, TapeSizeLimitBlocks: cfg.TapeSizeLimitBlocks}),
				}
			}

			mode := batch.PreDeciderStrict
			if reduced {
				// the reduced enumerator already guarantees a B-right start by
				// construction; still run the cheap simple-form rules.
				mode = batch.PreDeciderSimple
			}

			wp := batch.NewWorkerPool(cfg)
			res, err := wp.Run(enum, mode, newChain)
			if err != nil {
				return err
			}

			printResult(res)
			printEliminatedCounts("enumerator", enum.EliminatedCounts())
			if checkpointPath != "" {
				if err := batch.SaveCheckpoint(checkpointPath, batch.CheckpointFromResult(nStates, res)); err != nil {
					return err
				}
				fmt.Printf("checkpoint written to %s\n", checkpointPath)
			}
			return nil
		},
	}
	decideCmd.Flags().IntVar(&nStates, "n-states", 4, "number of states (1..5 core, <=7 enumerator)")
	decideCmd.Flags().Uint64Var(&machinesLimit, "machines-limit", 0, "cap on candidate machines (0 = unlimited)")
	decideCmd.Flags().Uint64Var(&stepLimitHalt, "step-limit-halt", 1_000_000, "halt decider step limit")
	decideCmd.Flags().Uint64Var(&stepLimitCycler, "step-limit-cycler", 1_000_000, "cycler decider step limit")
	decideCmd.Flags().IntVar(&tapeSizeLimit, "tape-size-limit-blocks", 0, "tape size limit in 32-bit blocks (0 = unlimited)")
	decideCmd.Flags().Uint64Var(&acceleratedStepLimitIterations, "accelerated-step-limit-iterations", 0, "cap on self-ref accelerated jumps per machine before falling back to single-stepping (0 = unlimited)")
	decideCmd.Flags().IntVar(&limitUndecided, "limit-machines-undecided", 10_000, "cap on retained undecided machines")
	decideCmd.Flags().IntVar(&numWorkers, "workers", 0, "number of worker goroutines (0 = derive from --cpu-utilization)")
	decideCmd.Flags().IntVar(&cpuUtilization, "cpu-utilization", 100, "percentage of logical CPUs to use when --workers is 0")
	decideCmd.Flags().BoolVar(&idCalcForward, "id-calc-forward", true, "use the forward field ordering as a machine's own canonical id")
	decideCmd.Flags().BoolVar(&reduced, "reduced", true, "use the reduced (construction-pruned) enumerator instead of full")
	decideCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print periodic rate/ETA progress")
	decideCmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "write periodic and final checkpoint files")
	decideCmd.Flags().IntVar(&checkpointInterval, "checkpoint-interval", 0, "batches between automatic checkpoint writes (0 = only at the end)")

	var machineText string
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Decide a single machine given in standard TM text format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := transition.ParseTable(machineText)
			if err != nil {
				return err
			}
			chain := batch.Chain{
				decider.NewHaltDecider(decider.HaltConfig{
					StepLimit:                     stepLimitHalt,
					TapeSizeLimitBlocks:            tapeSizeLimit,
					AcceleratedStepLimitIterations: acceleratedStepLimitIterations,
				}),
				decider.NewCyclerDecider(decider.CyclerConfig{StepLimit: stepLimitCycler, TapeSizeLimitBlocks: tapeSizeLimit}),
			}
			out := predecider.Run(false, table)
			if out.Halted {
				fmt.Println("Halts(1)")
				return nil
			}
			if out.Eliminated {
				fmt.Printf("EliminatedPreDecider(%s)\n", out.Reason)
				return nil
			}
			for _, d := range chain {
				status, err := d.Decide(table)
				if err != nil {
					return err
				}
				if status.Kind != decider.StatusUndecided {
					fmt.Println(status)
					return nil
				}
			}
			fmt.Println(decider.Status{Kind: decider.StatusUndecided, UndecidedReason: decider.UndecidedStepLimit})
			return nil
		},
	}
	checkCmd.Flags().StringVar(&machineText, "machine", "", "machine in standard TM text format, e.g. 1RB1LC_1RC1RB_1RD0LE_1LA1LD_---0LA")
	checkCmd.Flags().Uint64Var(&stepLimitHalt, "step-limit-halt", 1_000_000, "halt decider step limit")
	checkCmd.Flags().Uint64Var(&stepLimitCycler, "step-limit-cycler", 1_000_000, "cycler decider step limit")
	checkCmd.Flags().IntVar(&tapeSizeLimit, "tape-size-limit-blocks", 0, "tape size limit in 32-bit blocks (0 = unlimited)")
	checkCmd.Flags().Uint64Var(&acceleratedStepLimitIterations, "accelerated-step-limit-iterations", 0, "cap on self-ref accelerated jumps before falling back to single-stepping (0 = unlimited)")
	checkCmd.MarkFlagRequired("machine")

	enumerateCmd := &cobra.Command{
		Use:   "enumerate",
		Short: "Report enumerator batch counts without deciding",
		RunE: func(cmd *cobra.Command, args []string) error {
			var enum enumerator.Enumerator
			var err error
			if reduced {
				enum, err = enumerator.NewReduced(nStates, 4096, machinesLimit, idCalcForward)
			} else {
				enum, err = enumerator.NewFull(nStates, 1<<16, machinesLimit)
			}
			if err != nil {
				return err
			}
			fmt.Printf("n_states=%d total_approx=%d\n", nStates, enum.TotalApprox())
			var total, batches uint64
			for {
				b, isLast, err := enum.NextBatch()
				if err != nil {
					return err
				}
				total += uint64(len(b))
				batches++
				if isLast {
					break
				}
			}
			fmt.Printf("batches=%d machines=%d\n", batches, total)
			printEliminatedCounts("enumerator", enum.EliminatedCounts())
			return nil
		},
	}
	enumerateCmd.Flags().IntVar(&nStates, "n-states", 4, "number of states")
	enumerateCmd.Flags().Uint64Var(&machinesLimit, "machines-limit", 0, "cap on candidate machines (0 = unlimited)")
	enumerateCmd.Flags().BoolVar(&reduced, "reduced", true, "use the reduced enumerator instead of full")
	enumerateCmd.Flags().BoolVar(&idCalcForward, "id-calc-forward", true, "use the forward field ordering as a machine's own canonical id")

	checkpointCmd := &cobra.Command{Use: "checkpoint", Short: "Inspect saved checkpoints"}
	var showPath string
	checkpointShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Load and print a saved checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ckpt, err := batch.LoadCheckpoint(showPath)
			if err != nil {
				return err
			}
			fmt.Printf("n_states=%d machines_processed=%d halts=%d non_halt_cycle=%d\n",
				ckpt.NStates, ckpt.MachinesProcessed, ckpt.Halts, ckpt.NonHaltCycle)
			for rule, n := range ckpt.EliminatedPreDecider {
				fmt.Printf("  eliminated[%s]=%d\n", rule, n)
			}
			for reason, n := range ckpt.UndecidedByReason {
				fmt.Printf("  undecided[%s]=%d\n", reason, n)
			}
			return nil
		},
	}
	checkpointShowCmd.Flags().StringVar(&showPath, "path", "", "checkpoint file path")
	checkpointShowCmd.MarkFlagRequired("path")
	checkpointCmd.AddCommand(checkpointShowCmd)

	rootCmd.AddCommand(decideCmd, checkCmd, enumerateCmd, checkpointCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printResult(res *batch.Result) {
	fmt.Printf("total=%d halts=%d non_halt_cycle=%d\n", res.Total, res.Halts, res.NonHaltCycle)
	for rule, n := range res.EliminatedPreDecider {
		fmt.Printf("  eliminated[%s]=%d\n", rule, n)
	}
	for reason, n := range res.UndecidedByReason {
		fmt.Printf("  undecided[%s]=%d\n", reason, n)
	}
	fmt.Printf("retained_undecided=%d\n", len(res.Undecided))
}

func printEliminatedCounts(source string, counts map[string]uint64) {
	for rule, n := range counts {
		fmt.Printf("  %s_eliminated[%s]=%d\n", source, rule, n)
	}
}
