// Package main tunes ecosystem parameters with CMA-ES so that populations
// sustain themselves without rescue spawns.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/tidepool/config"
)

type options struct {
	configPath string
	years      float64
	seeds      int
	maxEvals   int
	population int
	outputDir  string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.Float64Var(&o.years, "years", 2, "Simulated years per run")
	flag.IntVar(&o.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&o.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&o.population, "population", 0, "CMA-ES population size (0 = 4 + 1.5 per parameter)")
	flag.StringVar(&o.outputDir, "output", "", "Output directory for tune_log.csv and best_config.yaml")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(o); err != nil {
		slog.Error("tuning failed", "error", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if o.outputDir == "" {
		return errors.New("--output is required")
	}
	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := config.Init(o.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	base := config.Cfg()

	params := NewParamVector()
	seeds := make([]int64, o.seeds)
	for i := range seeds {
		seeds[i] = int64(42 + 1000*i)
	}
	evaluator := NewFitnessEvaluator(params, o.years, seeds, base)

	tl, err := newTuneLog(filepath.Join(o.outputDir, "tune_log.csv"), params)
	if err != nil {
		return err
	}
	defer tl.Close()

	best := &bestRun{fitness: 1e9}
	start := time.Now()
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			vals := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(vals)
			quality := evaluator.LastQuality()
			best.offer(fitness, vals)

			n := tl.record(fitness, quality, vals)
			elapsed := time.Since(start)
			eta := time.Duration(o.maxEvals-n) * (elapsed / time.Duration(n))
			slog.Info("eval",
				"n", n,
				"of", o.maxEvals,
				"quality", quality,
				"best_quality", -best.fitness/100,
				"elapsed", elapsed.Round(time.Second),
				"eta", eta.Round(time.Second),
			)
			return fitness
		},
	}

	pop := o.population
	if pop == 0 {
		pop = 4 + 3*params.Dim()/2
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: pop}
	settings := &optimize.Settings{FuncEvaluations: o.maxEvals}

	slog.Info("starting CMA-ES", "params", params.Dim(), "population", pop, "max_evals", o.maxEvals,
		"seeds", o.seeds, "years", o.years)

	result, err := optimize.Minimize(problem, params.Normalize(params.ExtractFromConfig(base)), settings, method)
	if err != nil {
		slog.Warn("optimization ended early", "error", err)
	}
	if best.values == nil && result != nil {
		best.values = params.Clamp(params.Denormalize(result.X))
	}
	if best.values == nil {
		return errors.New("no evaluations completed")
	}

	attrs := []any{"evals", tl.n, "took", time.Since(start).Round(time.Second), "best_quality", -best.fitness / 100}
	for i, spec := range params.Specs {
		attrs = append(attrs, spec.Name, best.values[i])
	}
	slog.Info("tuning complete", attrs...)

	cfg := base.Clone()
	params.ApplyToConfig(cfg, best.values)
	path := filepath.Join(o.outputDir, "best_config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	slog.Info("best config saved", "path", path)
	return nil
}

// bestRun keeps the lowest fitness seen.
type bestRun struct {
	fitness float64
	values  []float64
}

func (b *bestRun) offer(fitness float64, values []float64) {
	if fitness < b.fitness {
		b.fitness = fitness
		b.values = values
	}
}

// tuneLog is the per-evaluation CSV log. Columns depend on the parameter
// set, so it is written with encoding/csv rather than struct tags.
type tuneLog struct {
	f *os.File
	w *csv.Writer
	n int
}

func newTuneLog(path string, params *ParamVector) (*tuneLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating tune log: %w", err)
	}
	tl := &tuneLog{f: f, w: csv.NewWriter(f)}
	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := tl.w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing tune log header: %w", err)
	}
	return tl, nil
}

// record appends one evaluation and returns the evaluation count.
func (tl *tuneLog) record(fitness, quality float64, values []float64) int {
	tl.n++
	row := []string{
		strconv.Itoa(tl.n),
		strconv.FormatFloat(fitness, 'f', 6, 64),
		strconv.FormatFloat(quality, 'f', 4, 64),
	}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := tl.w.Write(row); err != nil {
		slog.Warn("tune log write failed", "error", err)
	}
	tl.w.Flush()
	return tl.n
}

func (tl *tuneLog) Close() error {
	tl.w.Flush()
	return tl.f.Close()
}
