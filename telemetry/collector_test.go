package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/diffgrid/diffusion"
)

func TestCollector_FlushWindow(t *testing.T) {
	g, err := diffusion.NewGridWithOptions("Kalium", 0.4, diffusion.Options{Workers: 1})
	require.NoError(t, err)
	require.NoError(t, g.Initialize(diffusion.Extent{Max: [3]float64{60, 60, 60}}, 30))
	g.IncreaseConcentrationBy(r3.Vec{X: 45, Y: 45, Z: 45}, 4)

	idle, err := diffusion.NewGrid("Chemokine", 0.2)
	require.NoError(t, err)

	c := NewCollector("run-1", 10)
	c.RecordRelease("Kalium", 4)
	c.RecordGrowth("Kalium")
	c.RecordDropped("Kalium", 2)

	assert.False(t, c.ShouldFlush(9))
	assert.True(t, c.ShouldFlush(10))

	rows := c.Flush(10, []*diffusion.Grid{g, idle})
	require.Len(t, rows, 2)

	k := rows[0]
	assert.Equal(t, "run-1", k.RunID)
	assert.Equal(t, "Kalium", k.Substance)
	assert.Equal(t, int32(10), k.WindowEndTick)
	assert.Equal(t, 5, k.Resolution)
	assert.Equal(t, -30.0, k.Min)
	assert.Equal(t, 120.0, k.Max)
	assert.Equal(t, 4.0, k.TotalMass)
	assert.Equal(t, 4.0, k.Peak)
	assert.Equal(t, 4.0, k.Released)
	assert.Equal(t, 2, k.Dropped)
	assert.Equal(t, 1, k.Growths)

	// An uninitialized grid reports only its name.
	assert.Equal(t, "Chemokine", rows[1].Substance)
	assert.Zero(t, rows[1].Resolution)

	// Counters reset after flush.
	assert.False(t, c.ShouldFlush(19))
	rows = c.Flush(20, []*diffusion.Grid{g})
	assert.Zero(t, rows[0].Released)
	assert.Zero(t, rows[0].Growths)
	assert.Equal(t, int32(10), rows[0].WindowStartTick)
}
