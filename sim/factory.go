package sim

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/diffgrid/components"
	"github.com/pthm-cable/diffgrid/config"
)

// spawnInitialPopulation creates the configured cells. Groups with Count > 1
// are scattered uniformly in a cube of edge Spread around Position.
func (s *Simulation) spawnInitialPopulation() {
	for _, cc := range s.cfg.Cells {
		center := r3.Vec{X: cc.Position[0], Y: cc.Position[1], Z: cc.Position[2]}
		for i := 0; i < cc.Count; i++ {
			pos := center
			if cc.Count > 1 {
				pos = r3.Add(pos, r3.Vec{
					X: (s.rng.Float64() - 0.5) * cc.Spread,
					Y: (s.rng.Float64() - 0.5) * cc.Spread,
					Z: (s.rng.Float64() - 0.5) * cc.Spread,
				})
			}
			s.SpawnCell(pos, cc)
		}
	}
}

// SpawnCell creates one cell at pos with the diameter and behaviors of cc.
// Position, Count and Spread of cc are ignored.
func (s *Simulation) SpawnCell(pos r3.Vec, cc config.CellConfig) ecs.Entity {
	s.nextID++
	e := s.cellMapper.NewEntity(
		&components.Position{X: pos.X, Y: pos.Y, Z: pos.Z},
		&components.Cell{ID: s.nextID, Diameter: cc.Diameter},
	)
	if cc.Secretion != nil {
		s.secretionMap.Add(e, &components.Secretion{
			Substance: cc.Secretion.Substance,
			Rate:      cc.Secretion.Rate,
		})
	}
	if cc.Chemotaxis != nil {
		s.chemotaxisMap.Add(e, &components.Chemotaxis{
			Substance: cc.Chemotaxis.Substance,
			Speed:     cc.Chemotaxis.Speed,
		})
	}
	return e
}
