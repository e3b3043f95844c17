package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the cells and substance fields at one tick.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	RNGSeed int64  `json:"rng_seed"`
	Tick    int32  `json:"tick"`

	Substances []SubstanceState `json:"substances"`
	Cells      []CellState      `json:"cells"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// SubstanceState holds one substance grid.
type SubstanceState struct {
	Name        string  `json:"name"`
	Coefficient float64 `json:"coefficient"`

	// Layout
	Origin     float64 `json:"origin"`
	BoxLength  float64 `json:"box_length"`
	Resolution int     `json:"resolution"`

	// Index order, x fastest
	Concentrations []float64 `json:"concentrations"`
}

// CellState holds one cell.
type CellState struct {
	ID       uint32  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Diameter float64 `json:"diameter"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if b := snapshot.Bookmark; b != nil {
		// Sanitize bookmark for filename
		sanitized := strings.ReplaceAll(string(b.Type)+"_"+b.Substance, " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
