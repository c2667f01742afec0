package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/tidepool/config"
	"github.com/pthm-cable/tidepool/telemetry"
)

func init() {
	config.MustInit("")
}

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", pv.Specs[i].Name, def[i], back[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Cfg().Clone()

	over := make([]float64, pv.Dim())
	for i := range over {
		over[i] = 1e6
	}
	pv.ApplyToConfig(cfg, over)

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Max {
			t.Errorf("%s: expected clamp to %f, got %f", spec.Name, spec.Max, got[i])
		}
	}
}

func TestDefaultsWithinBounds(t *testing.T) {
	pv := NewParamVector()
	cur := pv.ExtractFromConfig(config.Cfg())
	for i, spec := range pv.Specs {
		if cur[i] < spec.Min || cur[i] > spec.Max {
			t.Errorf("%s: default %f outside [%f, %f]", spec.Path, cur[i], spec.Min, spec.Max)
		}
	}
}

func TestComputeQuality(t *testing.T) {
	steady := func(births, rescues, gen int) []telemetry.WindowStats {
		w := make([]telemetry.WindowStats, 10)
		for i := range w {
			w[i] = telemetry.WindowStats{
				Creatures:     60,
				Births:        births,
				RescueSpawns:  rescues,
				MaxGeneration: gen,
				EnergyP50:     healthyEnergy,
			}
		}
		return w
	}

	tests := []struct {
		name    string
		windows []telemetry.WindowStats
		min     float64
		max     float64
	}{
		{"too short", steady(5, 0, 3)[:2], 0, 0},
		{"all rescues", steady(0, 5, 0), 0.39, 0.41},
		{"self sustaining", steady(5, 0, 50), 0.99, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := computeQuality(tt.windows)
			if q < tt.min || q > tt.max {
				t.Errorf("expected quality in [%f, %f], got %f", tt.min, tt.max, q)
			}
		})
	}
}

func TestCV(t *testing.T) {
	if got := cv([]float64{5, 5, 5}); got != 0 {
		t.Errorf("expected 0 for constant series, got %f", got)
	}
	if got := cv([]float64{0, 0}); got != 0 {
		t.Errorf("expected 0 for zero mean, got %f", got)
	}
}
