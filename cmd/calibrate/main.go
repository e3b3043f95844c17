// Package main fits a diffusion coefficient so that a constant point source
// reaches a target centre concentration after a fixed number of steps.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/diffgrid/config"
)

// EvalRecord is one row of calibrate_log.csv.
type EvalRecord struct {
	RunID         string  `csv:"run_id"`
	Eval          int     `csv:"eval"`
	Coefficient   float64 `csv:"coefficient"`
	Concentration float64 `csv:"concentration"`
	Objective     float64 `csv:"objective"`
}

// Result is the outcome of a calibration run.
type Result struct {
	Coefficient   float64
	Concentration float64
	Objective     float64
	Evaluations   int
	Records       []EvalRecord
}

// Calibrate minimizes the squared centre error over the coefficient with
// Nelder-Mead, starting from initial.
func Calibrate(runID string, ev *Evaluator, initial float64, maxEvals int) (Result, error) {
	var res Result
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			f := ev.Evaluate(x)
			res.Evaluations++
			res.Records = append(res.Records, EvalRecord{
				RunID:         runID,
				Eval:          res.Evaluations,
				Coefficient:   x[0],
				Concentration: ev.LastConcentration(),
				Objective:     f,
			})
			return f
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-20,
			Iterations: 20,
		},
	}

	result, err := optimize.Minimize(problem, []float64{initial}, settings, &optimize.NelderMead{})
	if err != nil && result == nil {
		return res, fmt.Errorf("minimizing: %w", err)
	}

	res.Coefficient = result.X[0]
	res.Objective = result.F
	res.Concentration, err = ev.CentreConcentration(res.Coefficient)
	if err != nil {
		return res, fmt.Errorf("evaluating best coefficient: %w", err)
	}
	return res, nil
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	substance := flag.String("substance", "", "Substance whose coefficient is written to the output config (empty = first)")
	maxEvals := flag.Int("max-evals", 0, "Maximum number of evaluations (0 = use config)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	cal := cfg.Calibrate

	evals := cal.MaxEvals
	if *maxEvals > 0 {
		evals = *maxEvals
	}

	runID := uuid.NewString()
	ev := NewEvaluator(ReferenceScenario(cal.Source, cal.Steps), cal.TargetCentre)

	slog.Info("starting calibration",
		"run_id", runID,
		"target_centre", cal.TargetCentre,
		"steps", cal.Steps,
		"source", cal.Source,
		"initial", cal.Initial,
		"max_evals", evals,
	)

	start := time.Now()
	res, err := Calibrate(runID, ev, cal.Initial, evals)
	if err != nil {
		slog.Error("calibration failed", "error", err)
		os.Exit(1)
	}

	slog.Info("calibration complete",
		"run_id", runID,
		"coefficient", res.Coefficient,
		"concentration", res.Concentration,
		"objective", res.Objective,
		"evaluations", res.Evaluations,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)

	if *outputDir == "" {
		return
	}
	if err := writeOutput(*outputDir, *configPath, *substance, res); err != nil {
		slog.Error("failed to write output", "error", err)
		os.Exit(1)
	}
}

// writeOutput saves the evaluation log and a config with the fitted
// coefficient applied.
func writeOutput(dir, configPath, substance string, res Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "calibrate_log.csv"))
	if err != nil {
		return fmt.Errorf("creating calibrate_log.csv: %w", err)
	}
	defer f.Close()
	if err := gocsv.Marshal(res.Records, f); err != nil {
		return fmt.Errorf("writing calibrate_log.csv: %w", err)
	}

	best, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if len(best.Substances) > 0 {
		i := 0
		if substance != "" {
			idx, ok := best.Derived.SubstanceIndex[substance]
			if !ok {
				return fmt.Errorf("unknown substance %q", substance)
			}
			i = idx
		}
		best.Substances[i].Coefficient = res.Coefficient
	}

	path := filepath.Join(dir, "best_config.yaml")
	if err := best.WriteYAML(path); err != nil {
		return err
	}
	slog.Info("best config saved", "path", path)
	return nil
}
