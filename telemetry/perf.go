package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation step.
const (
	PhaseNeighborGrid = "neighbor_grid"
	PhaseReconcile    = "reconcile"
	PhaseSecretion    = "secretion"
	PhaseDiffusion    = "diffusion"
	PhaseGradient     = "gradient"
	PhaseChemotaxis   = "chemotaxis"
	PhaseTelemetry    = "telemetry"
)

// PhaseOrder lists the phases in step order.
var PhaseOrder = []string{
	PhaseNeighborGrid, PhaseReconcile, PhaseSecretion,
	PhaseDiffusion, PhaseGradient, PhaseChemotaxis, PhaseTelemetry,
}

// stepTiming is the phase breakdown of one step.
type stepTiming struct {
	total  time.Duration
	phases map[string]time.Duration
}

// PerfCollector times the phases of each step and averages them over a
// ring of the most recent steps.
type PerfCollector struct {
	now func() time.Time

	ring  []stepTiming
	next  int
	count int

	current    map[string]time.Duration
	stepStart  time.Time
	phase      string
	phaseStart time.Time
}

// NewPerfCollector creates a collector averaging over window steps.
func NewPerfCollector(window int) *PerfCollector {
	return newPerfCollector(window, time.Now)
}

func newPerfCollector(window int, now func() time.Time) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{
		now:     now,
		ring:    make([]stepTiming, window),
		current: make(map[string]time.Duration),
	}
}

// StartStep begins timing a step.
func (p *PerfCollector) StartStep() {
	p.stepStart = p.now()
	p.current = make(map[string]time.Duration)
	p.phase = ""
}

// StartPhase closes the running phase, if any, and starts the named one.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
}

// EndStep closes the running phase and records the step.
func (p *PerfCollector) EndStep() {
	now := p.now()
	p.closePhase(now)

	p.ring[p.next] = stepTiming{total: now.Sub(p.stepStart), phases: p.current}
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
}

// PerfStats aggregates the steps in the collector's window.
type PerfStats struct {
	AvgStep time.Duration
	MinStep time.Duration
	MaxStep time.Duration

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // share of the average step

	StepsPerSecond float64
	Samples        int
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	st := PerfStats{
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
		Samples:  p.count,
	}
	if p.count == 0 {
		return st
	}

	var total time.Duration
	sums := make(map[string]time.Duration)
	for i, s := range p.ring[:p.count] {
		total += s.total
		if i == 0 || s.total < st.MinStep {
			st.MinStep = s.total
		}
		st.MaxStep = max(st.MaxStep, s.total)
		for phase, d := range s.phases {
			sums[phase] += d
		}
	}

	n := time.Duration(p.count)
	st.AvgStep = total / n
	for phase, sum := range sums {
		st.PhaseAvg[phase] = sum / n
		if st.AvgStep > 0 {
			st.PhasePct[phase] = float64(sum) / float64(total) * 100
		}
	}
	if st.AvgStep > 0 {
		st.StepsPerSecond = float64(time.Second) / float64(st.AvgStep)
	}
	return st
}

// LogStats logs the window at info level. Phases under 0.1% are omitted.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_step_us", s.AvgStep.Microseconds(),
		"min_step_us", s.MinStep.Microseconds(),
		"max_step_us", s.MaxStep.Microseconds(),
		"steps_per_sec", int(s.StepsPerSecond),
	}
	for _, phase := range PhaseOrder {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	RunID           string  `csv:"run_id"`
	WindowEnd       int32   `csv:"window_end"`
	AvgStepUS       int64   `csv:"avg_step_us"`
	MinStepUS       int64   `csv:"min_step_us"`
	MaxStepUS       int64   `csv:"max_step_us"`
	StepsPerSec     float64 `csv:"steps_per_sec"`
	NeighborGridPct float64 `csv:"neighbor_grid_pct"`
	ReconcilePct    float64 `csv:"reconcile_pct"`
	SecretionPct    float64 `csv:"secretion_pct"`
	DiffusionPct    float64 `csv:"diffusion_pct"`
	GradientPct     float64 `csv:"gradient_pct"`
	ChemotaxisPct   float64 `csv:"chemotaxis_pct"`
	TelemetryPct    float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(runID string, windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		RunID:           runID,
		WindowEnd:       windowEnd,
		AvgStepUS:       s.AvgStep.Microseconds(),
		MinStepUS:       s.MinStep.Microseconds(),
		MaxStepUS:       s.MaxStep.Microseconds(),
		StepsPerSec:     s.StepsPerSecond,
		NeighborGridPct: s.PhasePct[PhaseNeighborGrid],
		ReconcilePct:    s.PhasePct[PhaseReconcile],
		SecretionPct:    s.PhasePct[PhaseSecretion],
		DiffusionPct:    s.PhasePct[PhaseDiffusion],
		GradientPct:     s.PhasePct[PhaseGradient],
		ChemotaxisPct:   s.PhasePct[PhaseChemotaxis],
		TelemetryPct:    s.PhasePct[PhaseTelemetry],
	}
}
