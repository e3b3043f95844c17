package diffusion

import "fmt"

// Index maps a box multi-index (i, j, k) to its linear storage offset.
// The x axis varies fastest: offset = i + j*n + k*n*n.
type Index struct {
	n, area int
}

// NewIndex returns the mapping for a cube with n boxes per axis.
func NewIndex(n int) Index {
	return Index{n: n, area: n * n}
}

// Resolution returns the number of boxes along one axis.
func (ix Index) Resolution() int { return ix.n }

// Boxes returns the total number of boxes.
func (ix Index) Boxes() int { return ix.area * ix.n }

// Offset returns the linear offset of box (i, j, k). It panics if any
// component is outside [0, Resolution()).
func (ix Index) Offset(i, j, k int) int {
	if !ix.InBounds(i, j, k) {
		panic(fmt.Sprintf("diffusion: box (%d, %d, %d) outside resolution %d", i, j, k, ix.n))
	}
	return i + j*ix.n + k*ix.area
}

// InBounds reports whether (i, j, k) addresses a box of this grid.
func (ix Index) InBounds(i, j, k int) bool {
	return i >= 0 && j >= 0 && k >= 0 && i < ix.n && j < ix.n && k < ix.n
}

// Coords inverts Offset.
func (ix Index) Coords(offset int) (i, j, k int) {
	if offset < 0 || offset >= ix.Boxes() {
		panic(fmt.Sprintf("diffusion: offset %d outside %d boxes", offset, ix.Boxes()))
	}
	k = offset / ix.area
	rem := offset - k*ix.area
	j = rem / ix.n
	i = rem - j*ix.n
	return i, j, k
}
