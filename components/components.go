// Package components defines ECS components for the simulation.
package components

// Cell holds per-cell state shared by every system.
type Cell struct {
	ID       uint32
	Diameter float64
}

// Secretion releases Rate units of a substance into the box under the
// cell every step.
type Secretion struct {
	Substance string
	Rate      float64
}

// Chemotaxis moves the cell Speed units per step along the normalized
// gradient of a substance.
type Chemotaxis struct {
	Substance string
	Speed     float64
}
