package telemetry

import (
	"math"
	"testing"
)

func TestComputeFieldStats(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	s := ComputeFieldStats(values)

	if math.Abs(s.Total-55) > 1e-12 {
		t.Errorf("total = %v, want 55", s.Total)
	}
	if math.Abs(s.Mean-5.5) > 1e-12 {
		t.Errorf("mean = %v, want 5.5", s.Mean)
	}
	// Population std of 1..10
	if math.Abs(s.Std-math.Sqrt(8.25)) > 1e-12 {
		t.Errorf("std = %v, want %v", s.Std, math.Sqrt(8.25))
	}
	if s.Peak != 10 {
		t.Errorf("peak = %v, want 10", s.Peak)
	}
	if s.P50 != 5 {
		t.Errorf("p50 = %v, want 5", s.P50)
	}
	if s.P90 != 9 {
		t.Errorf("p90 = %v, want 9", s.P90)
	}

	// Input must not be reordered
	if values[0] != 10 {
		t.Error("ComputeFieldStats modified its input")
	}
}

func TestComputeFieldStatsEmpty(t *testing.T) {
	if s := ComputeFieldStats(nil); s != (FieldStats{}) {
		t.Errorf("expected zero stats for empty field, got %+v", s)
	}
}
