package diffusion

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Field holds the concentration of one substance, one value per box.
// The solver is not in-place, so a second buffer receives each step.
type Field struct {
	cur  []float64
	next []float64
}

// NewField allocates a zeroed field for the given number of boxes.
func NewField(boxes int) *Field {
	return &Field{
		cur:  make([]float64, boxes),
		next: make([]float64, boxes),
	}
}

// Len returns the number of boxes.
func (f *Field) Len() int { return len(f.cur) }

// At returns the concentration at a linear offset.
func (f *Field) At(offset int) float64 { return f.cur[offset] }

// IncreaseBy adds amount to the box at offset. No clamping happens here;
// the threshold is applied by the next diffusion step.
func (f *Field) IncreaseBy(offset int, amount float64) {
	f.cur[offset] += amount
}

// Snapshot returns a copy of the concentrations in index order.
func (f *Field) Snapshot() []float64 {
	out := make([]float64, len(f.cur))
	copy(out, f.cur)
	return out
}

// Sum returns the total amount of substance in the field.
func (f *Field) Sum() float64 { return floats.Sum(f.cur) }

// Resize reallocates the field for the grown layout and copies every old
// value to the box that contains its old centroid.
func (f *Field) Resize(d GrowthDelta) {
	if !d.Grew() {
		return
	}
	f.cur = remap(f.cur, 1, d)
	f.next = make([]float64, len(f.cur))
}

// swap exchanges the current and next buffers after a step.
func (f *Field) swap() {
	f.cur, f.next = f.next, f.cur
}

// remap copies stride values per box from the old layout into a zeroed
// array for the new layout, locating each box by its physical centroid.
func remap(old []float64, stride int, d GrowthDelta) []float64 {
	oldIx := d.Old.Index()
	newIx := d.New.Index()
	if len(old) != stride*oldIx.Boxes() {
		panic(fmt.Sprintf("diffusion: remap of %d values does not match %d boxes", len(old), oldIx.Boxes()))
	}
	out := make([]float64, stride*newIx.Boxes())
	n := oldIx.Resolution()
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				ni, nj, nk, ok := d.New.BoxCoords(d.Old.Centroid(i, j, k))
				if !ok {
					panic("diffusion: grown layout does not contain the old grid")
				}
				src := stride * oldIx.Offset(i, j, k)
				dst := stride * newIx.Offset(ni, nj, nk)
				copy(out[dst:dst+stride], old[src:src+stride])
			}
		}
	}
	return out
}
