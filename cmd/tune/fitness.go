package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/tidepool/config"
	"github.com/pthm-cable/tidepool/game"
	"github.com/pthm-cable/tidepool/telemetry"
)

// FitnessEvaluator runs headless simulations and scores them.
type FitnessEvaluator struct {
	params     *ParamVector
	years      float64
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64
}

// NewFitnessEvaluator creates an evaluator running each seed for years.
func NewFitnessEvaluator(params *ParamVector, years float64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		years:      years,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Seeds run in parallel; each owns its game and config copy.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	qualities := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := fe.runSimulation(x, s)
			if err != nil {
				slog.Warn("evaluation run failed", "seed", s, "error", err)
				return
			}
			qualities[idx] = computeQuality(windows)
		}(i, seed)
	}
	wg.Wait()

	quality := stat.Mean(qualities, nil)

	fe.mu.Lock()
	fe.lastQuality = quality
	fe.mu.Unlock()

	return -100 * quality
}

// runSimulation executes one headless run and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) ([]telemetry.WindowStats, error) {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	var windows []telemetry.WindowStats
	g, err := game.NewGameWithOptions(game.Options{
		Seed:   seed,
		Config: cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer g.Close()

	dt := cfg.Simulation.TimeStep
	for g.Year() < fe.years {
		if err := g.Step(dt); err != nil {
			return windows, err
		}
	}
	return windows, nil
}

// Quality component weights.
const (
	qualityWeightSustain   = 0.35
	qualityWeightStability = 0.20
	qualityWeightLineage   = 0.25
	qualityWeightEnergy    = 0.20

	qualityWarmupWindows = 3
	lineageScale         = 10.0 // generations for ~63% lineage score
	healthyEnergy        = 1.5
)

// computeQuality scores a run in [0, 1]. sustain is the share of new
// creatures that were born rather than rescue-spawned.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var births, rescues, maxGen int
	counts := make([]float64, 0, len(valid))
	var energySum float64
	for _, w := range valid {
		births += w.Births
		rescues += w.RescueSpawns
		if w.MaxGeneration > maxGen {
			maxGen = w.MaxGeneration
		}
		counts = append(counts, float64(w.Creatures))
		energySum += math.Exp(-math.Pow((w.EnergyP50-healthyEnergy)/0.5, 2))
	}

	sustain := 0.0
	if births+rescues > 0 {
		sustain = float64(births) / float64(births+rescues)
	}

	stability := 0.0
	if len(counts) >= 2 {
		c := cv(counts)
		stability = math.Exp(-c * c)
	}

	lineage := 1 - math.Exp(-float64(maxGen)/lineageScale)
	energy := energySum / float64(len(valid))

	quality := qualityWeightSustain*sustain +
		qualityWeightStability*stability +
		qualityWeightLineage*lineage +
		qualityWeightEnergy*energy

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean).
func cv(values []float64) float64 {
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 || math.IsNaN(std) {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
