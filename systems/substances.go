package systems

import "github.com/pthm-cable/diffgrid/diffusion"

// GridSource resolves the diffusion grid of a substance by name.
type GridSource interface {
	Grid(name string) (*diffusion.Grid, bool)
}
