// Package sim drives cells and substance grids through the step loop.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/diffgrid/components"
	"github.com/pthm-cable/diffgrid/config"
	"github.com/pthm-cable/diffgrid/diffusion"
	"github.com/pthm-cable/diffgrid/systems"
	"github.com/pthm-cable/diffgrid/telemetry"
)

// Options configures a simulation.
type Options struct {
	RunID    string
	Seed     int64 // 0 = use config, then time-based
	LogStats bool

	// Output receives CSV rows; nil disables file output.
	Output *telemetry.OutputManager

	// SnapshotDir receives a JSON snapshot on every bookmark ("" = off).
	SnapshotDir string

	// StatsCallback is called with every flushed window.
	StatsCallback func([]telemetry.SubstanceStats)
}

// Simulation owns the ECS world of cells and the substance grids.
type Simulation struct {
	cfg  *config.Config
	opts Options

	world *ecs.World
	rng   *rand.Rand
	seed  int64

	// Entity creation and queries
	cellMapper    *ecs.Map2[components.Position, components.Cell]
	cellFilter    *ecs.Filter2[components.Position, components.Cell]
	secretionMap  *ecs.Map[components.Secretion]
	chemotaxisMap *ecs.Map[components.Chemotaxis]

	neighbors  *systems.NeighborGrid
	substances *Substances
	secretion  *systems.SecretionSystem
	chemotaxis *systems.ChemotaxisSystem

	// Telemetry
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector

	// State
	tick   int32
	nextID uint32
}

// New creates a simulation, spawns the configured cells and registers the
// configured substances around them.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	world := ecs.NewWorld()
	s := &Simulation{
		cfg:           cfg,
		opts:          opts,
		world:         world,
		rng:           rand.New(rand.NewSource(seed)),
		seed:          seed,
		cellMapper:    ecs.NewMap2[components.Position, components.Cell](world),
		cellFilter:    ecs.NewFilter2[components.Position, components.Cell](world),
		secretionMap:  ecs.NewMap[components.Secretion](world),
		chemotaxisMap: ecs.NewMap[components.Chemotaxis](world),
		neighbors:     systems.NewNeighborGrid(cfg.Environment.MinBoxLength),
		substances:    NewSubstances(),
		secretion:     systems.NewSecretionSystem(world),
		chemotaxis:    systems.NewChemotaxisSystem(world),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:     telemetry.NewCollector(opts.RunID, cfg.Telemetry.StatsWindow),
		bookmarks:     telemetry.NewBookmarkDetector(cfg.Telemetry.SteadyTolerance),
	}

	s.spawnInitialPopulation()

	for _, sc := range cfg.Substances {
		if err := s.AddSubstance(sc); err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

// AddSubstance creates a grid for sc, sizes it around the current cells
// and registers it.
func (s *Simulation) AddSubstance(sc config.SubstanceConfig) error {
	g, err := diffusion.NewGridWithOptions(sc.Name, sc.Coefficient, diffusion.Options{
		Decay:   sc.Decay,
		Workers: s.cfg.Simulation.Workers,
	})
	if err != nil {
		return err
	}
	if sc.Threshold != nil {
		if err := g.SetConcentrationThreshold(*sc.Threshold); err != nil {
			return err
		}
	}

	s.neighbors.Update(s.cellFilter)
	if err := g.Initialize(s.neighbors.Dimensions(), s.neighbors.BoxLength()); err != nil {
		return err
	}
	if err := s.substances.Add(g); err != nil {
		g.Close()
		return err
	}

	slog.Info("substance registered",
		"run_id", s.opts.RunID,
		"substance", g.Name(),
		"coefficient", g.Coefficient(),
		"resolution", g.Resolution(),
		"box_length", g.BoxLength(),
		"extent", g.Dimensions(),
	)
	return nil
}

// RemoveSubstance unregisters a substance. Cells still referring to it are
// skipped by secretion and chemotaxis.
func (s *Simulation) RemoveSubstance(name string) bool {
	return s.substances.Remove(name)
}

// Step advances the simulation by one step.
func (s *Simulation) Step() {
	s.perf.StartStep()

	s.perf.StartPhase(telemetry.PhaseNeighborGrid)
	s.neighbors.Update(s.cellFilter)

	s.perf.StartPhase(telemetry.PhaseReconcile)
	s.reconcileGrids()

	s.perf.StartPhase(telemetry.PhaseSecretion)
	released, dropped := s.secretion.Update(s.substances)
	for name, amount := range released {
		s.collector.RecordRelease(name, amount)
	}
	for name, n := range dropped {
		s.collector.RecordDropped(name, n)
		slog.Debug("secretion dropped", "tick", s.tick, "substance", name, "cells", n)
	}

	s.perf.StartPhase(telemetry.PhaseDiffusion)
	for _, g := range s.substances.All() {
		g.RunDiffusionStep()
	}

	s.perf.StartPhase(telemetry.PhaseGradient)
	for _, g := range s.substances.All() {
		g.CalculateGradient()
	}

	s.perf.StartPhase(telemetry.PhaseChemotaxis)
	s.chemotaxis.Update(s.substances)

	s.tick++

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perf.EndStep()
}

// reconcileGrids grows every grid to cover the current neighbor extent.
func (s *Simulation) reconcileGrids() {
	ext := s.neighbors.Dimensions()
	for _, g := range s.substances.All() {
		d := g.Update(ext)
		if !d.Grew() {
			continue
		}
		s.collector.RecordGrowth(g.Name())
		slog.Info("grid grew",
			"run_id", s.opts.RunID,
			"tick", s.tick,
			"substance", g.Name(),
			"old_resolution", d.Old.Resolution,
			"new_resolution", d.New.Resolution,
			"extent", g.Dimensions(),
		)
	}
}

// Run steps until steps have been taken (0 = until ctx is done).
func (s *Simulation) Run(ctx context.Context, steps int) error {
	for i := 0; steps == 0 || i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("stopped at tick %d: %w", s.tick, err)
		}
		s.Step()
	}
	return nil
}

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int32 { return s.tick }

// Seed returns the RNG seed in use.
func (s *Simulation) Seed() int64 { return s.seed }

// World returns the ECS world.
func (s *Simulation) World() *ecs.World { return s.world }

// Substances returns the substance set.
func (s *Simulation) Substances() *Substances { return s.substances }

// Neighbors returns the neighbor grid.
func (s *Simulation) Neighbors() *systems.NeighborGrid { return s.neighbors }

// Perf returns the performance collector.
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perf }

// Close stops the worker goroutines of all grids.
func (s *Simulation) Close() {
	s.substances.Close()
}
