package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	Year            float64 `csv:"year"`
	Temperature     float64 `csv:"temperature"`

	// Population counts at window end
	Creatures int `csv:"creatures"`
	Rocks     int `csv:"rocks"`
	Minimum   int `csv:"minimum"`

	// Events during window
	Births        int `csv:"births"`
	Deaths        int `csv:"deaths"`
	RescueSpawns  int `csv:"rescue_spawns"`
	Contacts      int `csv:"contacts"`
	FightingTicks int `csv:"fighting_ticks"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Ecosystem
	TotalFood      float64 `csv:"total_food"`
	TotalCreatures float64 `csv:"total_creature_energy"`
	FoodEaten      float64 `csv:"food_eaten"`

	// Lineage
	MaxGeneration  int     `csv:"max_generation"`
	MeanMutability float64 `csv:"mean_mutability"`
	ActiveClades   int     `csv:"active_clades"`
}

// Percentile returns the p-th quantile of a sorted slice using the
// empirical CDF. p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("year", s.Year),
		slog.Float64("temperature", s.Temperature),
		slog.Int("creatures", s.Creatures),
		slog.Int("rocks", s.Rocks),
		slog.Int("minimum", s.Minimum),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("rescue_spawns", s.RescueSpawns),
		slog.Int("contacts", s.Contacts),
		slog.Int("fighting_ticks", s.FightingTicks),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("total_food", s.TotalFood),
		slog.Float64("total_creature_energy", s.TotalCreatures),
		slog.Float64("food_eaten", s.FoodEaten),
		slog.Int("max_generation", s.MaxGeneration),
		slog.Float64("mean_mutability", s.MeanMutability),
		slog.Int("active_clades", s.ActiveClades),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
