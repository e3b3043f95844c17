package main

import (
	"math"

	"github.com/pthm-cable/diffgrid/diffusion"
)

// Coefficient bounds searched by the optimizer.
const (
	minCoefficient = 1e-6
	maxCoefficient = 1.0
)

// Scenario is a cubic domain with a constant point source at the centre box.
type Scenario struct {
	Extent    diffusion.Extent // Neighbor extent the grid is sized around
	BoxLength float64
	Source    float64 // Amount injected per step
	Steps     int
}

// ReferenceScenario is the 5x5x5 grid around [0, 60] with box length 30.
func ReferenceScenario(source float64, steps int) Scenario {
	return Scenario{
		Extent:    diffusion.Extent{Max: [3]float64{60, 60, 60}},
		BoxLength: 30,
		Source:    source,
		Steps:     steps,
	}
}

// Evaluator scores a candidate coefficient by the squared distance of the
// final centre concentration from a target.
type Evaluator struct {
	scenario Scenario
	target   float64
	last     float64
}

// NewEvaluator creates an evaluator for the scenario and target.
func NewEvaluator(s Scenario, target float64) *Evaluator {
	return &Evaluator{scenario: s, target: target}
}

// CentreConcentration runs the scenario and returns the concentration of
// the centre box.
func (e *Evaluator) CentreConcentration(coefficient float64) (float64, error) {
	g, err := diffusion.NewGridWithOptions("calibrate", coefficient, diffusion.Options{Workers: 1})
	if err != nil {
		return 0, err
	}
	defer g.Close()
	if err := g.Initialize(e.scenario.Extent, e.scenario.BoxLength); err != nil {
		return 0, err
	}

	n := g.Resolution()
	centre := g.Layout().Centroid(n/2, n/2, n/2)
	for i := 0; i < e.scenario.Steps; i++ {
		g.IncreaseConcentrationBy(centre, e.scenario.Source)
		g.RunDiffusionStep()
	}
	return g.Concentration(centre), nil
}

// Evaluate returns the objective for x[0] as the coefficient. Candidates
// outside the bounds are penalized by their distance to the bounds.
func (e *Evaluator) Evaluate(x []float64) float64 {
	c := x[0]
	if c < minCoefficient || c > maxCoefficient {
		e.last = math.NaN()
		return 1e9 * (1 + math.Max(minCoefficient-c, c-maxCoefficient))
	}
	v, err := e.CentreConcentration(c)
	if err != nil {
		e.last = math.NaN()
		return math.Inf(1)
	}
	e.last = v
	d := v - e.target
	return d * d
}

// LastConcentration returns the centre concentration of the last
// evaluation, or NaN if that candidate was out of bounds.
func (e *Evaluator) LastConcentration() float64 {
	return e.last
}
