package sim

import (
	"fmt"
	"io"
	"time"

	"github.com/pthm-cable/diffgrid/telemetry"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// LogPerfStats logs performance statistics.
func (s *Simulation) LogPerfStats() {
	stats := s.perf.Stats()
	Logf("=== Perf @ Tick %d | %d samples ===", s.tick, stats.Samples)
	Logf("Avg step time: %s", stats.AvgStep.Round(time.Microsecond))

	for _, name := range telemetry.PhaseOrder {
		avg, ok := stats.PhaseAvg[name]
		if !ok {
			continue
		}
		Logf("  %-14s %10s  %5.1f%%", name, avg.Round(time.Microsecond), stats.PhasePct[name])
	}
	Logf("")
}

// LogState logs the current grid state of every substance.
func (s *Simulation) LogState() {
	ext := s.neighbors.Dimensions()
	Logf("=== State @ Tick %d ===", s.tick)
	Logf("Cells: %d | neighbor extent %v..%v | box length %.1f",
		s.neighbors.Len(), ext.Min, ext.Max, s.neighbors.BoxLength())

	for _, g := range s.substances.All() {
		if !g.Initialized() {
			Logf("  %-12s (not initialized)", g.Name())
			continue
		}
		e := g.Extent()
		Logf("  %-12s res=%3d  box=%.1f  [%.1f, %.1f]  mass=%.4f",
			g.Name(), g.Resolution(), g.BoxLength(), e.Min[0], e.Max[0], g.TotalMass())
	}
	Logf("")
}
