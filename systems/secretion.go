package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/diffgrid/components"
)

// SecretionSystem injects substance into the box under every secreting cell.
type SecretionSystem struct {
	filter *ecs.Filter2[components.Position, components.Secretion]
}

// NewSecretionSystem creates the system for the given world.
func NewSecretionSystem(w *ecs.World) *SecretionSystem {
	return &SecretionSystem{filter: ecs.NewFilter2[components.Position, components.Secretion](w)}
}

// Update releases one step of secretion and returns the amount released
// per substance. Cells outside their substance grid, or secreting an
// unknown substance, are skipped and counted in dropped.
func (s *SecretionSystem) Update(grids GridSource) (released map[string]float64, dropped map[string]int) {
	released = make(map[string]float64)
	dropped = make(map[string]int)
	query := s.filter.Query()
	for query.Next() {
		pos, sec := query.Get()
		g, ok := grids.Grid(sec.Substance)
		if !ok || !g.Contains(pos.Vec()) {
			dropped[sec.Substance]++
			continue
		}
		g.IncreaseConcentrationBy(pos.Vec(), sec.Rate)
		released[sec.Substance] += sec.Rate
	}
	return released, dropped
}
