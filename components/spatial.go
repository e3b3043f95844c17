package components

import "gonum.org/v1/gonum/spatial/r3"

// Position represents a cell's position in world space.
type Position struct {
	X, Y, Z float64
}

// Vec returns the position as a vector.
func (p Position) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Translate moves the position by d.
func (p *Position) Translate(d r3.Vec) {
	p.X += d.X
	p.Y += d.Y
	p.Z += d.Z
}
