package diffusion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// eps absorbs rounding when extents are compared against box multiples.
const eps = 1e-9

// Extent is an axis-aligned physical region.
type Extent struct {
	Min, Max [3]float64
}

// ExtentFromArray builds an Extent from (x_min, x_max, y_min, y_max, z_min, z_max).
func ExtentFromArray(a [6]float64) Extent {
	return Extent{
		Min: [3]float64{a[0], a[2], a[4]},
		Max: [3]float64{a[1], a[3], a[5]},
	}
}

// Array returns the extent as (x_min, x_max, y_min, y_max, z_min, z_max).
func (e Extent) Array() [6]float64 {
	return [6]float64{e.Min[0], e.Max[0], e.Min[1], e.Max[1], e.Min[2], e.Max[2]}
}

// Span returns the length of the extent along axis.
func (e Extent) Span(axis int) float64 {
	return e.Max[axis] - e.Min[axis]
}

// Contains reports whether o lies inside e on every axis.
func (e Extent) Contains(o Extent) bool {
	for a := 0; a < 3; a++ {
		if o.Min[a] < e.Min[a]-eps || o.Max[a] > e.Max[a]+eps {
			return false
		}
	}
	return true
}

// overall returns the smallest and largest coordinate over all axes.
func (e Extent) overall() (lo, hi float64) {
	lo, hi = e.Min[0], e.Max[0]
	for a := 1; a < 3; a++ {
		lo = math.Min(lo, e.Min[a])
		hi = math.Max(hi, e.Max[a])
	}
	return lo, hi
}

// Layout is the geometry of a cubic grid: the low corner shared by all
// axes, the box edge length and the number of boxes per axis.
type Layout struct {
	Origin     float64
	BoxLength  float64
	Resolution int
}

// Extent returns the physical region covered by the layout.
func (l Layout) Extent() Extent {
	hi := l.Origin + float64(l.Resolution)*l.BoxLength
	return Extent{
		Min: [3]float64{l.Origin, l.Origin, l.Origin},
		Max: [3]float64{hi, hi, hi},
	}
}

// Index returns the multi-index mapping for the layout.
func (l Layout) Index() Index { return NewIndex(l.Resolution) }

// Centroid returns the physical centre of box (i, j, k).
func (l Layout) Centroid(i, j, k int) r3.Vec {
	return r3.Vec{
		X: l.Origin + (float64(i)+0.5)*l.BoxLength,
		Y: l.Origin + (float64(j)+0.5)*l.BoxLength,
		Z: l.Origin + (float64(k)+0.5)*l.BoxLength,
	}
}

// BoxCoords returns the multi-index of the box containing p. ok is false
// when p lies outside the layout.
func (l Layout) BoxCoords(p r3.Vec) (i, j, k int, ok bool) {
	i = int(math.Floor((p.X - l.Origin) / l.BoxLength))
	j = int(math.Floor((p.Y - l.Origin) / l.BoxLength))
	k = int(math.Floor((p.Z - l.Origin) / l.BoxLength))
	return i, j, k, l.Index().InBounds(i, j, k)
}

// GrowthDelta describes one reconciliation. Low and High count the whole
// boxes prepended and appended on each axis.
type GrowthDelta struct {
	Old, New  Layout
	Low, High [3]int
}

// Grew reports whether the reconciliation enlarged the grid.
func (d GrowthDelta) Grew() bool {
	return d.New.Resolution > d.Old.Resolution
}

// Bounds owns the extent, box length and resolution of a diffusion grid
// and decides how the grid grows. The grid is always a cube aligned to the
// box length and never shrinks.
type Bounds struct {
	layout      Layout
	initialized bool
}

// Init establishes the first extent: the halo-padded cube around neighbor.
func (b *Bounds) Init(neighbor Extent, boxLength float64) error {
	if b.initialized {
		return ErrAlreadyInitialized
	}
	if !(boxLength > 0) || math.IsInf(boxLength, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidBoxLength, boxLength)
	}
	origin, n := haloCube(neighbor, boxLength)
	b.layout = Layout{Origin: origin, BoxLength: boxLength, Resolution: n}
	b.initialized = true
	return nil
}

// Reconcile grows the cube so that it contains the halo-padded neighbor
// extent. Growth is symmetric: every face receives the same number of new
// boxes, which keeps the existing lattice and the domain centre fixed.
// Calling it again with the same extent is a no-op.
func (b *Bounds) Reconcile(neighbor Extent) GrowthDelta {
	b.mustBeInitialized()
	old := b.layout
	d := GrowthDelta{Old: old, New: old}

	bl := old.BoxLength
	origin, n := haloCube(neighbor, bl)
	targetHi := origin + float64(n)*bl
	curHi := old.Origin + float64(old.Resolution)*bl

	g := 0
	if origin < old.Origin-eps {
		g = max(g, boxesToCover(old.Origin-origin, bl))
	}
	if targetHi > curHi+eps {
		g = max(g, boxesToCover(targetHi-curHi, bl))
	}
	if g == 0 {
		return d
	}

	b.layout.Origin = old.Origin - float64(g)*bl
	b.layout.Resolution = old.Resolution + 2*g
	d.New = b.layout
	d.Low = [3]int{g, g, g}
	d.High = [3]int{g, g, g}
	return d
}

// Layout returns the current geometry.
func (b *Bounds) Layout() Layout {
	b.mustBeInitialized()
	return b.layout
}

// Extent returns the current physical extent.
func (b *Bounds) Extent() Extent { return b.Layout().Extent() }

// Resolution returns the current number of boxes per axis.
func (b *Bounds) Resolution() int { return b.Layout().Resolution }

// BoxLength returns the fixed box edge length.
func (b *Bounds) BoxLength() float64 { return b.Layout().BoxLength }

// Initialized reports whether Init has succeeded.
func (b *Bounds) Initialized() bool { return b.initialized }

func (b *Bounds) mustBeInitialized() {
	if !b.initialized {
		panic("diffusion: grid bounds used before Initialize")
	}
}

// haloCube returns the origin and resolution of the smallest box-aligned
// cube, anchored at the neighbor extent's overall minimum, that strictly
// contains the extent, padded by one box on every face.
func haloCube(neighbor Extent, boxLength float64) (origin float64, n int) {
	lo, hi := neighbor.overall()
	span := math.Max(hi-lo, 0)
	n = int(math.Floor(span/boxLength+eps)) + 1
	return lo - boxLength, n + 2
}

// boxesToCover returns the whole boxes needed to cover length.
func boxesToCover(length, boxLength float64) int {
	return int(math.Ceil(length/boxLength - eps))
}
