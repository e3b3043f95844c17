package diffusion

import "math"

// Solver advances a concentration field by one explicit step of a
// 7-point stencil:
//
//	next = ((1-D)*c + D/6*(w + e + s + n + b + t)) * (1-Decay)
//
// Boxes on the domain boundary leak: a neighbor outside the grid
// contributes zero, so substance is lost at the faces. The gradient uses
// one-sided differences there instead.
type Solver struct {
	Coefficient float64
	Decay       float64
	// Threshold caps every value after the pass. +Inf disables it.
	Threshold float64
}

// NewSolver returns an unthresholded solver.
func NewSolver(coefficient, decay float64) Solver {
	return Solver{Coefficient: coefficient, Decay: decay, Threshold: math.Inf(1)}
}

// Step computes the whole next array from src into dst.
func (s Solver) Step(ix Index, src, dst []float64) {
	s.stepSlab(ix, src, dst, 0, ix.Resolution())
}

// stepSlab updates the boxes with z index in [k0, k1). It reads only src
// and writes only dst[k0*n*n : k1*n*n], so slabs can run concurrently.
func (s Solver) stepSlab(ix Index, src, dst []float64, k0, k1 int) {
	n := ix.Resolution()
	nn := n * n
	wc := 1 - s.Coefficient
	wn := s.Coefficient / 6
	keep := 1 - s.Decay

	for z := k0; z < k1; z++ {
		for y := 0; y < n; y++ {
			c := y*n + z*nn
			for x := 0; x < n; x++ {
				var w, e, so, no, b, t float64
				if x > 0 {
					w = src[c-1]
				}
				if x < n-1 {
					e = src[c+1]
				}
				if y < n-1 {
					so = src[c+n]
				}
				if y > 0 {
					no = src[c-n]
				}
				if z > 0 {
					b = src[c-nn]
				}
				if z < n-1 {
					t = src[c+nn]
				}
				// Explicit conversions prevent fused multiply-adds.
				v := float64(wc*src[c]) + float64(wn*w) + float64(wn*e) +
					float64(wn*so) + float64(wn*no) + float64(wn*b) + float64(wn*t)
				v *= keep
				dst[c] = s.clamp(v)
				c++
			}
		}
	}
}

// clamp keeps a value within [0, Threshold].
func (s Solver) clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > s.Threshold {
		return s.Threshold
	}
	return v
}
