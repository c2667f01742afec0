package systems

import (
	"math"

	"github.com/pthm-cable/tidepool/components"
	"github.com/pthm-cable/tidepool/config"
)

// EnergyDensity is the energy per unit disk area. A body at the minimum
// survivable size holds exactly one unit of energy.
var EnergyDensity = 1.0 / (config.MinimumSurvivableSize * config.MinimumSurvivableSize * math.Pi)

// Radius returns the disk radius of a body with the given energy.
func Radius(energy float64) float64 {
	if energy <= 0 {
		return 0
	}
	return math.Sqrt(energy / EnergyDensity / math.Pi)
}

// Mass returns energy / EnergyDensity * density.
func Mass(energy, density float64) float64 {
	return energy / EnergyDensity * density
}

// EffectiveMass is Mass floored at minMass, for use as a divisor.
func EffectiveMass(energy, density, minMass float64) float64 {
	return math.Max(Mass(energy, density), minMass)
}

// BoundingBox returns the clamped cell range covering a disk of
// radius*fightRange centered at (x, y) on a cols x rows grid.
func BoundingBox(x, y, radius, fightRange float64, cols, rows int) components.CellBox {
	reach := radius * fightRange
	return components.CellBox{
		MinX: clampInt(int(math.Floor(x-reach)), 0, cols-1),
		MinY: clampInt(int(math.Floor(y-reach)), 0, rows-1),
		MaxX: clampInt(int(math.Floor(x+reach)), 0, cols-1),
		MaxY: clampInt(int(math.Floor(y+reach)), 0, rows-1),
	}
}
