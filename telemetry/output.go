package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/diffgrid/config"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir           string
	substanceFile *os.File
	perfFile      *os.File
	bookmarkFile  *os.File

	// Track if headers have been written
	substanceHeaderWritten bool
	perfHeaderWritten      bool
	bookmarkHeaderWritten  bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	// Create output directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	// Open substances.csv
	f, err := os.Create(filepath.Join(dir, "substances.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating substances.csv: %w", err)
	}
	om.substanceFile = f

	// Open perf.csv
	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.substanceFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	// Open bookmarks.csv
	f, err = os.Create(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		om.substanceFile.Close()
		om.perfFile.Close()
		return nil, fmt.Errorf("creating bookmarks.csv: %w", err)
	}
	om.bookmarkFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteSubstances writes one window of substance stats to substances.csv.
func (om *OutputManager) WriteSubstances(stats []SubstanceStats) error {
	if om == nil || len(stats) == 0 {
		return nil
	}

	if !om.substanceHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(stats, om.substanceFile); err != nil {
			return fmt.Errorf("writing substances: %w", err)
		}
		om.substanceHeaderWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(stats, om.substanceFile); err != nil {
			return fmt.Errorf("writing substances: %w", err)
		}
	}

	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, runID string, windowEnd int32) error {
	if om == nil {
		return nil
	}

	records := []PerfStatsCSV{stats.ToCSV(runID, windowEnd)}

	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
	}

	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}

	records := []Bookmark{b}

	if !om.bookmarkHeaderWritten {
		if err := gocsv.Marshal(records, om.bookmarkFile); err != nil {
			return fmt.Errorf("writing bookmark: %w", err)
		}
		om.bookmarkHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.bookmarkFile); err != nil {
			return fmt.Errorf("writing bookmark: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.substanceFile != nil {
		if err := om.substanceFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.perfFile != nil {
		if err := om.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.bookmarkFile != nil {
		if err := om.bookmarkFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
