package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SubstanceStats holds aggregated statistics of one substance for a window.
type SubstanceStats struct {
	RunID           string `csv:"run_id"`
	WindowStartTick int32  `csv:"-"`
	WindowEndTick   int32  `csv:"window_end"`
	Substance       string `csv:"substance"`

	// Grid geometry at window end
	Resolution int     `csv:"resolution"`
	BoxLength  float64 `csv:"box_length"`
	Min        float64 `csv:"min"` // Lower corner, equal on every axis
	Max        float64 `csv:"max"`

	// Concentration distribution at window end
	TotalMass float64 `csv:"total_mass"`
	Mean      float64 `csv:"mean"`
	Std       float64 `csv:"std"`
	Peak      float64 `csv:"peak"`
	P50       float64 `csv:"p50"`
	P90       float64 `csv:"p90"`

	// Events during window
	Released float64 `csv:"released"` // Amount secreted
	Dropped  int     `csv:"dropped"`  // Secretions skipped outside the grid
	Growths  int     `csv:"growths"`  // Times the grid grew
}

// FieldStats summarizes a concentration field.
type FieldStats struct {
	Total, Mean, Std, Peak, P50, P90 float64
}

// ComputeFieldStats calculates totals and the distribution of values.
func ComputeFieldStats(values []float64) FieldStats {
	if len(values) == 0 {
		return FieldStats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	return FieldStats{
		Total: floats.Sum(sorted),
		Mean:  mean,
		Std:   std,
		Peak:  sorted[len(sorted)-1],
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s SubstanceStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("substance", s.Substance),
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("resolution", s.Resolution),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
		slog.Float64("total_mass", s.TotalMass),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("peak", s.Peak),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Float64("released", s.Released),
		slog.Int("dropped", s.Dropped),
		slog.Int("growths", s.Growths),
	)
}

// LogStats logs the substance stats using slog.
func (s SubstanceStats) LogStats() {
	slog.Info("substance",
		"run_id", s.RunID,
		"substance", s.Substance,
		"window_end", s.WindowEndTick,
		"resolution", s.Resolution,
		"total_mass", s.TotalMass,
		"peak", s.Peak,
		"released", s.Released,
		"growths", s.Growths,
	)
}
