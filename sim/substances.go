package sim

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/diffgrid/diffusion"
)

// ErrDuplicateSubstance is returned when a substance name is already registered.
var ErrDuplicateSubstance = errors.New("substance already registered")

// Substances is the set of substance grids of one simulation, kept in
// registration order.
type Substances struct {
	grids map[string]*diffusion.Grid
	order []string
}

// NewSubstances creates an empty set.
func NewSubstances() *Substances {
	return &Substances{grids: make(map[string]*diffusion.Grid)}
}

// Add registers a grid under its name.
func (s *Substances) Add(g *diffusion.Grid) error {
	if _, ok := s.grids[g.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateSubstance, g.Name())
	}
	s.grids[g.Name()] = g
	s.order = append(s.order, g.Name())
	return nil
}

// Grid returns the grid registered under name.
func (s *Substances) Grid(name string) (*diffusion.Grid, bool) {
	g, ok := s.grids[name]
	return g, ok
}

// Remove unregisters and closes the grid registered under name.
func (s *Substances) Remove(name string) bool {
	g, ok := s.grids[name]
	if !ok {
		return false
	}
	g.Close()
	delete(s.grids, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns the grids in registration order.
func (s *Substances) All() []*diffusion.Grid {
	out := make([]*diffusion.Grid, len(s.order))
	for i, n := range s.order {
		out[i] = s.grids[n]
	}
	return out
}

// Len returns the number of registered substances.
func (s *Substances) Len() int { return len(s.order) }

// Close stops the worker goroutines of every grid.
func (s *Substances) Close() {
	for _, g := range s.grids {
		g.Close()
	}
}
