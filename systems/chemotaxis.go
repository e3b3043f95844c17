package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/diffgrid/components"
)

// ChemotaxisSystem moves cells up the gradient of the substance they sense.
type ChemotaxisSystem struct {
	filter *ecs.Filter2[components.Position, components.Chemotaxis]
}

// NewChemotaxisSystem creates the system for the given world.
func NewChemotaxisSystem(w *ecs.World) *ChemotaxisSystem {
	return &ChemotaxisSystem{filter: ecs.NewFilter2[components.Position, components.Chemotaxis](w)}
}

// Update moves every sensing cell by Speed along the normalized gradient at
// its position and returns the number of cells that moved.
func (s *ChemotaxisSystem) Update(grids GridSource) int {
	moved := 0
	query := s.filter.Query()
	for query.Next() {
		pos, chem := query.Get()
		g, ok := grids.Grid(chem.Substance)
		if !ok || !g.Contains(pos.Vec()) {
			continue
		}
		dir := g.NormalizedGradient(pos.Vec())
		if dir == (r3.Vec{}) {
			continue
		}
		pos.Translate(r3.Scale(chem.Speed, dir))
		moved++
	}
	return moved
}
