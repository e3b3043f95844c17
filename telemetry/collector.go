// Package telemetry provides substance statistics, bookmarks, snapshots and
// performance tracking.
package telemetry

import "github.com/pthm-cable/diffgrid/diffusion"

// substanceEvents counts events of one substance within a window.
type substanceEvents struct {
	released float64
	dropped  int
	growths  int
}

// Collector accumulates events within step windows and produces
// SubstanceStats.
type Collector struct {
	runID       string
	windowTicks int32

	// Current window tracking
	windowStartTick int32
	events          map[string]*substanceEvents
}

// NewCollector creates a new stats collector flushing every windowTicks steps.
func NewCollector(runID string, windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		runID:       runID,
		windowTicks: int32(windowTicks),
		events:      make(map[string]*substanceEvents),
	}
}

func (c *Collector) get(substance string) *substanceEvents {
	ev, ok := c.events[substance]
	if !ok {
		ev = &substanceEvents{}
		c.events[substance] = ev
	}
	return ev
}

// RecordRelease records substance secreted during a step.
func (c *Collector) RecordRelease(substance string, amount float64) {
	c.get(substance).released += amount
}

// RecordDropped records secretions skipped for a substance.
func (c *Collector) RecordDropped(substance string, n int) {
	c.get(substance).dropped += n
}

// RecordGrowth records that a substance grid grew.
func (c *Collector) RecordGrowth(substance string) {
	c.get(substance).growths++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces one SubstanceStats per grid, in the given order, and
// resets counters for the next window.
func (c *Collector) Flush(currentTick int32, grids []*diffusion.Grid) []SubstanceStats {
	out := make([]SubstanceStats, 0, len(grids))
	for _, g := range grids {
		s := SubstanceStats{
			RunID:           c.runID,
			WindowStartTick: c.windowStartTick,
			WindowEndTick:   currentTick,
			Substance:       g.Name(),
		}
		if ev, ok := c.events[g.Name()]; ok {
			s.Released = ev.released
			s.Dropped = ev.dropped
			s.Growths = ev.growths
		}
		if g.Initialized() {
			e := g.Extent()
			fs := ComputeFieldStats(g.AllConcentrations())
			s.Resolution = g.Resolution()
			s.BoxLength = g.BoxLength()
			s.Min, s.Max = e.Min[0], e.Max[0]
			s.TotalMass = fs.Total
			s.Mean = fs.Mean
			s.Std = fs.Std
			s.Peak = fs.Peak
			s.P50 = fs.P50
			s.P90 = fs.P90
		}
		out = append(out, s)
	}

	// Reset for next window
	c.windowStartTick = currentTick
	clear(c.events)

	return out
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowTicks
}
