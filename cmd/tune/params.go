package main

import (
	"github.com/pthm-cable/tidepool/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // column name in the log
	Path    string  // config path
	Min     float64 // lower bound
	Max     float64 // upper bound
	Default float64
}

// ParamVector holds the set of tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Food supply
			{Name: "food_growth_rate", Path: "tiles.food_growth_rate", Min: 0.3, Max: 3.0, Default: 1.0},
			{Name: "max_growth_level", Path: "tiles.max_growth_level", Min: 1.0, Max: 6.0, Default: 3.0},
			// Creature costs
			{Name: "metabolism_energy", Path: "creature.metabolism_energy", Min: 0.001, Max: 0.02, Default: 0.004},
			{Name: "acceleration_energy", Path: "creature.acceleration_energy", Min: 0.05, Max: 0.4, Default: 0.18},
			{Name: "turn_energy", Path: "creature.turn_energy", Min: 0.01, Max: 0.2, Default: 0.05},
			{Name: "eat_energy", Path: "creature.eat_energy", Min: 0.01, Max: 0.2, Default: 0.05},
			{Name: "fight_energy", Path: "creature.fight_energy", Min: 0.01, Max: 0.2, Default: 0.06},
			// Feeding and combat
			{Name: "eat_speed", Path: "creature.eat_speed", Min: 0.1, Max: 0.9, Default: 0.5},
			{Name: "food_sensitivity", Path: "creature.food_sensitivity", Min: 0.1, Max: 0.6, Default: 0.3},
			{Name: "injured_energy", Path: "creature.injured_energy", Min: 0.05, Max: 0.6, Default: 0.25},
			// Reproduction
			{Name: "safe_size", Path: "creature.safe_size", Min: 1.05, Max: 2.5, Default: 1.25},
			{Name: "mature_age", Path: "creature.mature_age", Min: 0.001, Max: 0.1, Default: 0.01},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1].
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	i := 0

	cfg.Tiles.FoodGrowthRate = c[i]; i++
	cfg.Tiles.MaxGrowthLevel = c[i]; i++

	cfg.Creature.MetabolismEnergy = c[i]; i++
	cfg.Creature.AccelerationEnergy = c[i]; i++
	// backwards acceleration stays proportionally more expensive
	cfg.Creature.AccelerationBackEnergy = cfg.Creature.AccelerationEnergy * 4 / 3
	cfg.Creature.TurnEnergy = c[i]; i++
	cfg.Creature.EatEnergy = c[i]; i++
	cfg.Creature.FightEnergy = c[i]; i++

	cfg.Creature.EatSpeed = c[i]; i++
	cfg.Creature.FoodSensitivity = c[i]; i++
	cfg.Creature.InjuredEnergy = c[i]; i++

	cfg.Creature.SafeSize = c[i]; i++
	cfg.Creature.MatureAge = c[i]
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Tiles.FoodGrowthRate,
		cfg.Tiles.MaxGrowthLevel,
		cfg.Creature.MetabolismEnergy,
		cfg.Creature.AccelerationEnergy,
		cfg.Creature.TurnEnergy,
		cfg.Creature.EatEnergy,
		cfg.Creature.FightEnergy,
		cfg.Creature.EatSpeed,
		cfg.Creature.FoodSensitivity,
		cfg.Creature.InjuredEnergy,
		cfg.Creature.SafeSize,
		cfg.Creature.MatureAge,
	}
}
