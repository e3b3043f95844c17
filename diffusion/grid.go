// Package diffusion solves the concentration of one diffusible substance
// on a growing cubic grid and derives its gradient.
package diffusion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Options configures optional grid behavior.
type Options struct {
	Decay   float64 // fraction of substance lost per step, in [0, 1]
	Workers int     // 0 = GOMAXPROCS, 1 = single-threaded
}

// Grid is the diffusion grid of a single substance. It tracks an external
// neighbor extent, growing without ever invalidating stored values.
//
// Grid is not safe for concurrent use. Update must not overlap a diffusion
// or gradient pass on the same grid.
type Grid struct {
	name   string
	solver Solver

	bounds   Bounds
	field    *Field
	gradient *Gradient

	pool *workerPool
}

// NewGrid creates a grid for a substance with default options.
func NewGrid(name string, coefficient float64) (*Grid, error) {
	return NewGridWithOptions(name, coefficient, Options{})
}

// NewGridWithOptions creates a grid with the given options.
func NewGridWithOptions(name string, coefficient float64, opts Options) (*Grid, error) {
	if !(coefficient > 0) || math.IsInf(coefficient, 1) {
		return nil, fmt.Errorf("substance %q: %w: %v", name, ErrInvalidCoefficient, coefficient)
	}
	if !validDecay(opts.Decay) {
		return nil, fmt.Errorf("substance %q: %w: %v", name, ErrInvalidDecay, opts.Decay)
	}
	return &Grid{
		name:   name,
		solver: NewSolver(coefficient, opts.Decay),
		pool:   newWorkerPool(opts.Workers),
	}, nil
}

// Initialize sizes the grid around the neighbor extent and allocates the
// concentration and gradient arrays.
func (g *Grid) Initialize(neighbor Extent, boxLength float64) error {
	if err := g.bounds.Init(neighbor, boxLength); err != nil {
		return fmt.Errorf("substance %q: %w", g.name, err)
	}
	boxes := g.bounds.Layout().Index().Boxes()
	g.field = NewField(boxes)
	g.gradient = NewGradient(boxes)
	return nil
}

// Update reconciles the grid against the current neighbor extent. If the
// grid grew, existing concentrations and gradients are copied into the
// enlarged arrays at their unchanged physical positions.
func (g *Grid) Update(neighbor Extent) GrowthDelta {
	d := g.bounds.Reconcile(neighbor)
	if d.Grew() {
		g.field.Resize(d)
		g.gradient.Resize(d)
	}
	return d
}

// IncreaseConcentrationBy adds amount to the box containing position.
func (g *Grid) IncreaseConcentrationBy(position r3.Vec, amount float64) {
	g.field.IncreaseBy(g.BoxIndex(position), amount)
}

// RunDiffusionStep advances the concentrations by one time step.
func (g *Grid) RunDiffusionStep() {
	ix := g.index()
	src, dst := g.field.cur, g.field.next
	g.pool.run(ix.Resolution(), ix.Boxes(), func(k0, k1 int) {
		g.solver.stepSlab(ix, src, dst, k0, k1)
	})
	g.field.swap()
}

// CalculateGradient recomputes the gradient from the current concentrations.
func (g *Grid) CalculateGradient() {
	ix := g.index()
	conc, bl := g.field.cur, g.bounds.BoxLength()
	g.pool.run(ix.Resolution(), ix.Boxes(), func(k0, k1 int) {
		g.gradient.computeSlab(ix, conc, bl, k0, k1)
	})
}

// SetConcentrationThreshold caps concentrations from the next step on.
// +Inf removes the cap.
func (g *Grid) SetConcentrationThreshold(v float64) error {
	if v < 0 || math.IsNaN(v) {
		return fmt.Errorf("substance %q: %w: %v", g.name, ErrInvalidThreshold, v)
	}
	g.solver.Threshold = v
	return nil
}

// ConcentrationThreshold returns the current cap (+Inf when unset).
func (g *Grid) ConcentrationThreshold() float64 { return g.solver.Threshold }

// SetDecayConstant sets the fraction of substance lost per step.
func (g *Grid) SetDecayConstant(mu float64) error {
	if !validDecay(mu) {
		return fmt.Errorf("substance %q: %w: %v", g.name, ErrInvalidDecay, mu)
	}
	g.solver.Decay = mu
	return nil
}

// Name returns the substance name.
func (g *Grid) Name() string { return g.name }

// Coefficient returns the diffusion coefficient.
func (g *Grid) Coefficient() float64 { return g.solver.Coefficient }

// Initialized reports whether Initialize has succeeded.
func (g *Grid) Initialized() bool { return g.bounds.Initialized() }

// AllConcentrations returns a copy of every concentration in index order.
func (g *Grid) AllConcentrations() []float64 {
	g.mustBeInitialized()
	return g.field.Snapshot()
}

// AllGradients returns a copy of every gradient component, three per box.
func (g *Grid) AllGradients() []float64 {
	g.mustBeInitialized()
	return g.gradient.Snapshot()
}

// Dimensions returns (x_min, x_max, y_min, y_max, z_min, z_max).
func (g *Grid) Dimensions() [6]float64 { return g.bounds.Extent().Array() }

// Extent returns the current physical extent.
func (g *Grid) Extent() Extent { return g.bounds.Extent() }

// Layout returns the current grid geometry.
func (g *Grid) Layout() Layout { return g.bounds.Layout() }

// Resolution returns the number of boxes per axis.
func (g *Grid) Resolution() int { return g.bounds.Resolution() }

// BoxLength returns the box edge length.
func (g *Grid) BoxLength() float64 { return g.bounds.BoxLength() }

// TotalBoxes returns the number of boxes in the grid.
func (g *Grid) TotalBoxes() int { return g.index().Boxes() }

// BoxIndex returns the linear index of the box containing position. It
// panics if position lies outside the grid.
func (g *Grid) BoxIndex(position r3.Vec) int {
	l := g.bounds.Layout()
	i, j, k, ok := l.BoxCoords(position)
	if !ok {
		panic(fmt.Sprintf("diffusion: position %v outside grid %v", position, l.Extent().Array()))
	}
	return l.Index().Offset(i, j, k)
}

// Contains reports whether position lies inside the grid.
func (g *Grid) Contains(position r3.Vec) bool {
	_, _, _, ok := g.bounds.Layout().BoxCoords(position)
	return ok
}

// BoxIndexOf returns the linear index of box (i, j, k).
func (g *Grid) BoxIndexOf(box [3]int) int {
	return g.index().Offset(box[0], box[1], box[2])
}

// Concentration returns the concentration of the box containing position.
func (g *Grid) Concentration(position r3.Vec) float64 {
	return g.field.At(g.BoxIndex(position))
}

// GradientAt returns the gradient of the box containing position.
func (g *Grid) GradientAt(position r3.Vec) r3.Vec {
	v := g.gradient.At(g.BoxIndex(position))
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// NormalizedGradient returns the unit gradient at position, or the zero
// vector where the field is flat.
func (g *Grid) NormalizedGradient(position r3.Vec) r3.Vec {
	v := g.GradientAt(position)
	norm := r3.Norm(v)
	if norm <= 1e-10 {
		return r3.Vec{}
	}
	return r3.Scale(1/norm, v)
}

// TotalMass returns the sum of all concentrations.
func (g *Grid) TotalMass() float64 {
	g.mustBeInitialized()
	return g.field.Sum()
}

// Close stops the grid's worker goroutines. The grid remains usable and
// restarts workers on demand.
func (g *Grid) Close() {
	g.pool.stop()
}

func (g *Grid) index() Index {
	return g.bounds.Layout().Index()
}

func (g *Grid) mustBeInitialized() {
	if !g.bounds.Initialized() {
		panic(fmt.Sprintf("diffusion: substance %q used before Initialize", g.name))
	}
}

func validDecay(mu float64) bool {
	return mu >= 0 && mu <= 1
}
