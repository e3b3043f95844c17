package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/diffgrid/diffusion"
)

func TestSubstances_OrderedRegistry(t *testing.T) {
	s := NewSubstances()
	for _, name := range []string{"Kalium", "Chemokine", "Oxygen"} {
		g, err := diffusion.NewGrid(name, 0.4)
		require.NoError(t, err)
		require.NoError(t, s.Add(g))
	}

	dup, err := diffusion.NewGrid("Kalium", 0.1)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Add(dup), ErrDuplicateSubstance)

	g, ok := s.Grid("Chemokine")
	require.True(t, ok)
	assert.Equal(t, "Chemokine", g.Name())
	_, ok = s.Grid("Sodium")
	assert.False(t, ok)

	assert.True(t, s.Remove("Chemokine"))
	assert.False(t, s.Remove("Chemokine"))
	assert.Equal(t, 2, s.Len())

	var names []string
	for _, g := range s.All() {
		names = append(names, g.Name())
	}
	assert.Equal(t, []string{"Kalium", "Oxygen"}, names)
}
