// Package systems provides ECS systems for the simulation.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/diffgrid/components"
	"github.com/pthm-cable/diffgrid/diffusion"
)

// NeighborGrid tracks the bounding extent of all cells and the box length
// substance grids must use. It is rebuilt every step with Clear and Insert.
type NeighborGrid struct {
	minBoxLength float64

	lo, hi      [3]float64
	count       int
	maxDiameter float64

	// last non-empty extent, kept so an empty world doesn't shrink grids
	last diffusion.Extent
}

// NewNeighborGrid creates a neighbor grid whose box length never drops
// below minBoxLength.
func NewNeighborGrid(minBoxLength float64) *NeighborGrid {
	return &NeighborGrid{minBoxLength: minBoxLength}
}

// Clear forgets all inserted cells. The previous extent stays available
// until a new cell is inserted.
func (g *NeighborGrid) Clear() {
	if g.count > 0 {
		g.last = g.current()
	}
	g.count = 0
}

// Insert adds a cell to the bounding extent.
func (g *NeighborGrid) Insert(pos components.Position, diameter float64) {
	p := [3]float64{pos.X, pos.Y, pos.Z}
	if g.count == 0 {
		g.lo, g.hi = p, p
	} else {
		for a := 0; a < 3; a++ {
			g.lo[a] = math.Min(g.lo[a], p[a])
			g.hi[a] = math.Max(g.hi[a], p[a])
		}
	}
	g.count++
	g.maxDiameter = math.Max(g.maxDiameter, diameter)
}

// Update rebuilds the grid from every cell in the filter.
func (g *NeighborGrid) Update(filter *ecs.Filter2[components.Position, components.Cell]) {
	g.Clear()
	query := filter.Query()
	for query.Next() {
		pos, cell := query.Get()
		g.Insert(*pos, cell.Diameter)
	}
}

// Len returns the number of cells inserted since the last Clear.
func (g *NeighborGrid) Len() int { return g.count }

// Dimensions returns the cell extent rounded outwards to whole units.
func (g *NeighborGrid) Dimensions() diffusion.Extent {
	if g.count > 0 {
		return g.current()
	}
	return g.last
}

// BoxLength returns the largest diameter seen so far, rounded up, but at
// least the configured minimum.
func (g *NeighborGrid) BoxLength() float64 {
	return math.Max(g.minBoxLength, math.Ceil(g.maxDiameter))
}

func (g *NeighborGrid) current() diffusion.Extent {
	var e diffusion.Extent
	for a := 0; a < 3; a++ {
		e.Min[a] = math.Floor(g.lo[a])
		e.Max[a] = math.Ceil(g.hi[a])
	}
	return e
}
