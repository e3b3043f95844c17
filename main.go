package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/pthm-cable/diffgrid/config"
	"github.com/pthm-cable/diffgrid/sim"
	"github.com/pthm-cable/diffgrid/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files written on bookmarks")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, then time-based)")
	steps := flag.Int("steps", -1, "Stop after N steps (0 = unlimited, -1 = use config)")
	dump := flag.Bool("dump", false, "Print grid state and perf breakdown at the end of the run")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	maxSteps := cfg.Simulation.Steps
	if *steps >= 0 {
		maxSteps = *steps
	}

	runID := uuid.NewString()

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	s, err := sim.New(cfg, sim.Options{
		RunID:       runID,
		Seed:        *seed,
		LogStats:    *logStats,
		Output:      output,
		SnapshotDir: *snapshotDir,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	slog.Info("starting simulation",
		"run_id", runID,
		"seed", s.Seed(),
		"steps", maxSteps,
		"substances", s.Substances().Len(),
		"cells", cfg.Derived.TotalCells,
		"output_dir", *outputDir,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = s.Run(ctx, maxSteps)
	switch {
	case errors.Is(err, context.Canceled):
		slog.Info("interrupted", "tick", s.Tick())
	case err != nil:
		slog.Error("simulation failed", "error", err)
	default:
		slog.Info("max steps reached", "tick", s.Tick())
	}

	if *dump {
		s.LogState()
		s.LogPerfStats()
	}
}
