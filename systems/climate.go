package systems

import (
	"math"

	"github.com/pthm-cable/tidepool/config"
)

// Climate is the seasonal temperature model. Temperature follows a cosine
// over the season fraction, with its trough at midwinter (t=0) and its peak
// at midsummer (t=0.5). Min <= Max always holds.
type Climate struct {
	min, max           float64
	thermoMin, thermoMax float64
}

// NewClimate creates a climate with the given bounds, swapping them if needed.
func NewClimate(min, max, thermoMin, thermoMax float64) *Climate {
	c := &Climate{thermoMin: thermoMin, thermoMax: thermoMax}
	c.SetBounds(min, max)
	return c
}

// NewClimateFromConfig creates a climate from the config.
func NewClimateFromConfig(cfg *config.Config) *Climate {
	cc := cfg.Climate
	return NewClimate(cc.MinTemperature, cc.MaxTemperature, cc.ThermometerMin, cc.ThermometerMax)
}

// Min returns the midwinter temperature.
func (c *Climate) Min() float64 { return c.min }

// Max returns the midsummer temperature.
func (c *Climate) Max() float64 { return c.max }

// GrowthEquilibrium returns the growth signal at season fraction t.
func (c *Climate) GrowthEquilibrium(t float64) float64 {
	r := c.max - c.min
	return c.min + r*0.5 - r*0.5*math.Cos(2*math.Pi*t)
}

// IntegratedGrowth returns the definite integral of GrowthEquilibrium from
// t0 to t1. It is additive over adjacent ranges.
func (c *Climate) IntegratedGrowth(t0, t1 float64) float64 {
	r := c.max - c.min
	m := c.min + r*0.5
	return (t1-t0)*m + (r/math.Pi/4.0)*(math.Sin(2*math.Pi*t0)-math.Sin(2*math.Pi*t1))
}

// SetBounds sets both temperatures. If min > max the values are swapped
// and true is returned.
func (c *Climate) SetBounds(min, max float64) (swapped bool) {
	c.min, c.max = min, max
	return c.order()
}

// SetMinTemperature sets the minimum from a thermometer proportion in [0,1].
// The result is clamped to the thermometer range. Returns true when the
// new minimum exceeded the maximum and the two were swapped.
func (c *Climate) SetMinTemperature(proportion float64) (swapped bool) {
	c.min = c.fromProportion(proportion)
	return c.order()
}

// SetMaxTemperature sets the maximum from a thermometer proportion in [0,1].
// Returns true when the bounds had to be swapped.
func (c *Climate) SetMaxTemperature(proportion float64) (swapped bool) {
	c.max = c.fromProportion(proportion)
	return c.order()
}

// LowProportion returns the minimum as a thermometer proportion.
func (c *Climate) LowProportion() float64 {
	return (c.min - c.thermoMin) / (c.thermoMax - c.thermoMin)
}

// HighProportion returns the maximum as a thermometer proportion.
func (c *Climate) HighProportion() float64 {
	return (c.max - c.thermoMin) / (c.thermoMax - c.thermoMin)
}

func (c *Climate) fromProportion(p float64) float64 {
	return clamp(c.thermoMin+p*(c.thermoMax-c.thermoMin), c.thermoMin, c.thermoMax)
}

func (c *Climate) order() bool {
	if c.min > c.max {
		c.min, c.max = c.max, c.min
		return true
	}
	return false
}
