package diffusion

// Gradient holds three partial derivatives per box, laid out as
// values[3*offset+axis].
type Gradient struct {
	values []float64
}

// NewGradient allocates a zeroed gradient for the given number of boxes.
func NewGradient(boxes int) *Gradient {
	return &Gradient{values: make([]float64, 3*boxes)}
}

// Len returns the number of stored components.
func (g *Gradient) Len() int { return len(g.values) }

// At returns the gradient of the box at offset.
func (g *Gradient) At(offset int) [3]float64 {
	return [3]float64{g.values[3*offset], g.values[3*offset+1], g.values[3*offset+2]}
}

// Snapshot returns a copy of all components in index order.
func (g *Gradient) Snapshot() []float64 {
	out := make([]float64, len(g.values))
	copy(out, g.values)
	return out
}

// Resize reallocates for the grown layout, keeping old vectors in the box
// that contains their old centroid.
func (g *Gradient) Resize(d GrowthDelta) {
	if !d.Grew() {
		return
	}
	g.values = remap(g.values, 3, d)
}

// Compute recomputes every component from conc.
func (g *Gradient) Compute(ix Index, conc []float64, boxLength float64) {
	g.computeSlab(ix, conc, boxLength, 0, ix.Resolution())
}

// computeSlab fills the boxes with z index in [k0, k1). Interior boxes use
// centred differences. A box on a face has no neighbor outside the grid,
// so it uses the one-sided difference towards the interior over two boxes
// instead of treating the missing neighbor as zero.
func (g *Gradient) computeSlab(ix Index, conc []float64, boxLength float64, k0, k1 int) {
	n := ix.Resolution()
	nn := n * n
	gd := 1 / (2 * boxLength)

	for z := k0; z < k1; z++ {
		bz, tz := stencilPair(z, n)
		for y := 0; y < n; y++ {
			ny, sy := stencilPair(y, n)
			for x := 0; x < n; x++ {
				wx, ex := stencilPair(x, n)
				c := x + y*n + z*nn
				g.values[3*c+0] = (conc[ex+y*n+z*nn] - conc[wx+y*n+z*nn]) * gd
				g.values[3*c+1] = (conc[x+sy*n+z*nn] - conc[x+ny*n+z*nn]) * gd
				g.values[3*c+2] = (conc[x+y*n+tz*nn] - conc[x+y*n+bz*nn]) * gd
			}
		}
	}
}

// stencilPair returns the low and high coordinates used for the difference
// at position p on an axis of n boxes.
func stencilPair(p, n int) (lo, hi int) {
	switch {
	case n < 2:
		return p, p
	case p == 0:
		return 0, min(2, n-1)
	case p == n-1:
		return max(n-3, 0), n - 1
	default:
		return p - 1, p + 1
	}
}
