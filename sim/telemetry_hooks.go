package sim

import (
	"log/slog"

	"github.com/pthm-cable/diffgrid/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.substances.All())
	perfStats := s.perf.Stats()

	// Call stats callback if provided
	if s.opts.StatsCallback != nil {
		s.opts.StatsCallback(stats)
	}

	// Log stats if enabled (console output)
	if s.opts.LogStats {
		for _, st := range stats {
			st.LogStats()
		}
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if s.opts.Output != nil {
		if err := s.opts.Output.WriteSubstances(stats); err != nil {
			slog.Error("failed to write substances", "error", err)
		}
		if err := s.opts.Output.WritePerf(perfStats, s.opts.RunID, s.tick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	// Check for bookmarks
	for _, bm := range s.bookmarks.Check(stats) {
		if s.opts.LogStats {
			bm.LogBookmark()
		}

		if s.opts.Output != nil {
			if err := s.opts.Output.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		// Save snapshot on bookmark
		if s.opts.SnapshotDir != "" {
			s.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (s *Simulation) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(s.Snapshot(bookmark), s.opts.SnapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", s.tick)
}

// Snapshot captures the cells and initialized substance grids.
func (s *Simulation) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		RunID:    s.opts.RunID,
		RNGSeed:  s.seed,
		Tick:     s.tick,
		Bookmark: bookmark,
	}

	for _, g := range s.substances.All() {
		if !g.Initialized() {
			continue
		}
		l := g.Layout()
		snapshot.Substances = append(snapshot.Substances, telemetry.SubstanceState{
			Name:           g.Name(),
			Coefficient:    g.Coefficient(),
			Origin:         l.Origin,
			BoxLength:      l.BoxLength,
			Resolution:     l.Resolution,
			Concentrations: g.AllConcentrations(),
		})
	}

	query := s.cellFilter.Query()
	for query.Next() {
		pos, cell := query.Get()
		snapshot.Cells = append(snapshot.Cells, telemetry.CellState{
			ID:       cell.ID,
			X:        pos.X,
			Y:        pos.Y,
			Z:        pos.Z,
			Diameter: cell.Diameter,
		})
	}

	return snapshot
}
