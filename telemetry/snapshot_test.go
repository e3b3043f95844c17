package telemetry

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		RunID:   "run-1",
		RNGSeed: 42,
		Tick:    1000,
		Substances: []SubstanceState{{
			Name:           "Kalium",
			Coefficient:    0.4,
			Origin:         -30,
			BoxLength:      30,
			Resolution:     2,
			Concentrations: []float64{0, 1, 2, 3, 4, 5, 6, 7.5},
		}},
		Cells: []CellState{
			{ID: 1, X: 45, Y: 45, Z: 45, Diameter: 30},
		},
		Bookmark: &Bookmark{Type: BookmarkSteadyState, Tick: 1000, Substance: "Kalium"},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if want := filepath.Join(tmpDir, "snapshot_1000_steady_state_Kalium.json"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if diff := cmp.Diff(snapshot, loaded); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing snapshot")
	}
}
