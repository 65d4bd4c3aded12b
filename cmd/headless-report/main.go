package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/hivebound/hivebound/internal/game"
	"go.uber.org/zap"
)

// headless-report runs unattended AI-vs-AI skirmishes and prints end-of-run
// summaries. Useful for balance sweeps and catching simulation regressions
// without a display.

func main() {
	var runs int
	var seconds float64
	var seedBase int64
	var seedStep int64
	var verbose bool

	flag.IntVar(&runs, "runs", 3, "number of headless runs")
	flag.Float64Var(&seconds, "seconds", 300, "simulated seconds per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.BoolVar(&verbose, "verbose", false, "echo every simulation event")
	flag.Parse()

	if runs <= 0 || seconds <= 0 {
		fmt.Fprintln(os.Stderr, "error: -runs and -seconds must be > 0")
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	batchID := uuid.NewString()
	logger.Info("starting headless batch",
		zap.String("batch_id", batchID),
		zap.Int("runs", runs),
		zap.Float64("seconds", seconds))

	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		runID := uuid.NewString()
		logger.Info("run starting",
			zap.String("run_id", runID),
			zap.Int("run", i+1),
			zap.Int64("seed", seed))

		rep := game.RunMatch(game.MatchConfig{
			Seed:    seed,
			Seconds: seconds,
			Verbose: verbose,
		})

		fmt.Printf("\n=== run %d/%d  id=%s ===\n", i+1, runs, runID)
		rep.Write(os.Stdout)

		if rep.GridRepaired > 0 {
			logger.Warn("spatial grid performed double-insert repairs",
				zap.String("run_id", runID),
				zap.Int("repairs", rep.GridRepaired))
		}
	}
}
