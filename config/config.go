// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation  SimulationConfig  `yaml:"simulation"`
	Environment EnvironmentConfig `yaml:"environment"`
	Substances  []SubstanceConfig `yaml:"substances"`
	Cells       []CellConfig      `yaml:"cells"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Calibrate   CalibrateConfig   `yaml:"calibrate"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds step-loop parameters.
type SimulationConfig struct {
	Steps   int   `yaml:"steps"`   // Number of steps for a headless run (0 = unlimited)
	Workers int   `yaml:"workers"` // Worker goroutines per substance grid (0 = GOMAXPROCS)
	Seed    int64 `yaml:"seed"`    // RNG seed for scattered cells (0 = time-based)
}

// EnvironmentConfig holds neighbor grid parameters.
type EnvironmentConfig struct {
	MinBoxLength float64 `yaml:"min_box_length"` // Lower bound on the neighbor grid box length
}

// SubstanceConfig describes one diffusible substance.
type SubstanceConfig struct {
	Name        string   `yaml:"name"`
	Coefficient float64  `yaml:"coefficient"` // Diffusion coefficient (fraction leaving a box per step)
	Decay       float64  `yaml:"decay"`       // Fraction lost per step
	Threshold   *float64 `yaml:"threshold"`   // Concentration cap (nil = unbounded)
}

// CellConfig places cells at startup. Count > 1 scatters cells uniformly
// inside Spread around Position.
type CellConfig struct {
	Position   [3]float64        `yaml:"position"`
	Diameter   float64           `yaml:"diameter"`
	Count      int               `yaml:"count"`
	Spread     float64           `yaml:"spread"`
	Secretion  *SecretionConfig  `yaml:"secretion"`
	Chemotaxis *ChemotaxisConfig `yaml:"chemotaxis"`
}

// SecretionConfig makes a cell release a substance every step.
type SecretionConfig struct {
	Substance string  `yaml:"substance"`
	Rate      float64 `yaml:"rate"`
}

// ChemotaxisConfig makes a cell move along a substance gradient.
type ChemotaxisConfig struct {
	Substance string  `yaml:"substance"`
	Speed     float64 `yaml:"speed"` // Distance per step along the unit gradient
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int     `yaml:"stats_window"` // Steps per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	SteadyTolerance     float64 `yaml:"steady_tolerance"` // Relative mass change per window counted as steady
}

// CalibrateConfig holds the target for cmd/calibrate.
type CalibrateConfig struct {
	TargetCentre float64 `yaml:"target_centre"` // Desired centre concentration after Steps
	Steps        int     `yaml:"steps"`
	Source       float64 `yaml:"source"` // Amount injected at the centre per step
	Initial      float64 `yaml:"initial"`
	MaxEvals     int     `yaml:"max_evals"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SubstanceIndex map[string]int // name -> index into Substances
	TotalCells     int            // Sum of Cells[i].Count
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	for i := range c.Cells {
		if c.Cells[i].Count == 0 {
			c.Cells[i].Count = 1
		}
	}

	c.Derived.SubstanceIndex = make(map[string]int, len(c.Substances))
	for i, s := range c.Substances {
		c.Derived.SubstanceIndex[s.Name] = i
	}

	c.Derived.TotalCells = 0
	for _, cell := range c.Cells {
		c.Derived.TotalCells += cell.Count
	}
}

// Validate rejects configurations the solver cannot run.
func (c *Config) Validate() error {
	var errs []error
	if !(c.Environment.MinBoxLength > 0) {
		errs = append(errs, fmt.Errorf("environment.min_box_length must be positive, got %v", c.Environment.MinBoxLength))
	}

	seen := make(map[string]bool, len(c.Substances))
	for _, s := range c.Substances {
		if s.Name == "" {
			errs = append(errs, errors.New("substance without name"))
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("substance %q defined twice", s.Name))
		}
		seen[s.Name] = true
		if !(s.Coefficient > 0) || math.IsInf(s.Coefficient, 1) {
			errs = append(errs, fmt.Errorf("substance %q: coefficient must be positive, got %v", s.Name, s.Coefficient))
		}
		if s.Decay < 0 || s.Decay > 1 {
			errs = append(errs, fmt.Errorf("substance %q: decay must be within [0, 1], got %v", s.Name, s.Decay))
		}
		if s.Threshold != nil && (*s.Threshold < 0 || math.IsNaN(*s.Threshold)) {
			errs = append(errs, fmt.Errorf("substance %q: threshold must be non-negative, got %v", s.Name, *s.Threshold))
		}
	}

	for i, cell := range c.Cells {
		if !(cell.Diameter > 0) {
			errs = append(errs, fmt.Errorf("cells[%d]: diameter must be positive, got %v", i, cell.Diameter))
		}
		if cell.Secretion != nil && !seen[cell.Secretion.Substance] {
			errs = append(errs, fmt.Errorf("cells[%d]: unknown secreted substance %q", i, cell.Secretion.Substance))
		}
		if cell.Chemotaxis != nil && !seen[cell.Chemotaxis.Substance] {
			errs = append(errs, fmt.Errorf("cells[%d]: unknown chemotaxis substance %q", i, cell.Chemotaxis.Substance))
		}
	}

	if c.Telemetry.StatsWindow < 1 {
		errs = append(errs, fmt.Errorf("telemetry.stats_window must be at least 1, got %d", c.Telemetry.StatsWindow))
	}

	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
