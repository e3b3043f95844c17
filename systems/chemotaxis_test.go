package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/diffgrid/components"
)

func TestChemotaxis_MovesUpGradient(t *testing.T) {
	g := newGrid(t, "Chemokine")
	src := r3.Vec{X: 45, Y: 45, Z: 45}
	for i := 0; i < 10; i++ {
		g.IncreaseConcentrationBy(src, 4)
		g.RunDiffusionStep()
	}
	g.CalculateGradient()

	w := ecs.NewWorld()
	mapper := ecs.NewMap2[components.Position, components.Chemotaxis](w)
	// Box (3,2,2): the source lies in -x direction.
	e := mapper.NewEntity(&components.Position{X: 75, Y: 45, Z: 45}, &components.Chemotaxis{Substance: "Chemokine", Speed: 2})

	moved := NewChemotaxisSystem(w).Update(gridMap{"Chemokine": g})
	if moved != 1 {
		t.Fatalf("expected 1 cell moved, got %d", moved)
	}

	pos := ecs.NewMap[components.Position](w).Get(e)
	if math.Abs(pos.X-73) > 1e-9 || math.Abs(pos.Y-45) > 1e-9 || math.Abs(pos.Z-45) > 1e-9 {
		t.Errorf("expected cell at (73,45,45), got (%v,%v,%v)", pos.X, pos.Y, pos.Z)
	}
}

func TestChemotaxis_FlatFieldStaysPut(t *testing.T) {
	g := newGrid(t, "Chemokine")
	g.CalculateGradient()

	w := ecs.NewWorld()
	mapper := ecs.NewMap2[components.Position, components.Chemotaxis](w)
	mapper.NewEntity(&components.Position{X: 15, Y: 15, Z: 15}, &components.Chemotaxis{Substance: "Chemokine", Speed: 2})

	if moved := NewChemotaxisSystem(w).Update(gridMap{"Chemokine": g}); moved != 0 {
		t.Errorf("expected no movement on a flat field, got %d", moved)
	}
}
