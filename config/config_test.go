package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if len(cfg.Substances) == 0 {
		t.Fatal("expected default substances")
	}
	if cfg.Substances[0].Threshold != nil {
		t.Errorf("expected first substance unbounded, got %v", *cfg.Substances[0].Threshold)
	}
	if _, ok := cfg.Derived.SubstanceIndex["Kalium"]; !ok {
		t.Error("expected Kalium in substance index")
	}
	if cfg.Derived.TotalCells != 10 {
		t.Errorf("expected 10 default cells, got %d", cfg.Derived.TotalCells)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	user := `
simulation:
  steps: 7
substances:
  - name: Oxygen
    coefficient: 0.1
    threshold: 2.5
cells: []
`
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.Steps != 7 {
		t.Errorf("steps = %d, want 7", cfg.Simulation.Steps)
	}
	if len(cfg.Substances) != 1 || cfg.Substances[0].Name != "Oxygen" {
		t.Fatalf("expected substances replaced by user list, got %+v", cfg.Substances)
	}
	if th := cfg.Substances[0].Threshold; th == nil || *th != 2.5 {
		t.Errorf("threshold = %v, want 2.5", th)
	}
	// Untouched sections keep their defaults
	if cfg.Telemetry.StatsWindow != 50 {
		t.Errorf("stats_window = %d, want default 50", cfg.Telemetry.StatsWindow)
	}
}

func TestValidateRejectsBadSubstances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	user := `
substances:
  - name: Kalium
    coefficient: 0
  - name: Kalium
    coefficient: 0.4
    decay: 2
  - name: Natrium
    coefficient: 0.4
    threshold: -5
cells:
  - position: [0, 0, 0]
    diameter: 10
    secretion:
      substance: Missing
      rate: 1
`
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"coefficient must be positive", "defined twice", "decay must be within", "threshold must be non-negative", "unknown secreted substance"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if len(again.Substances) != len(cfg.Substances) {
		t.Errorf("substances = %d, want %d", len(again.Substances), len(cfg.Substances))
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Cfg()
}
