package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tidepool/components"
	"github.com/pthm-cable/tidepool/config"
)

func init() {
	config.MustInit("")
}

// bodyWorld is a minimal ECS world holding bare physical bodies.
type bodyWorld struct {
	world  *ecs.World
	mapper *ecs.Map5[components.Position, components.Velocity, components.Body, components.Color, components.CellBox]
}

func newBodyWorld() *bodyWorld {
	w := ecs.NewWorld()
	return &bodyWorld{
		world: w,
		mapper: ecs.NewMap5[
			components.Position, components.Velocity, components.Body, components.Color, components.CellBox,
		](w),
	}
}

func (b *bodyWorld) spawn(x, y, energy, density float64) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{}
	body := components.Body{Energy: energy, Density: density, Kind: components.KindRock}
	col := components.Color{}
	box := components.CellBox{}
	return b.mapper.NewEntity(&pos, &vel, &body, &col, &box)
}

// energyForRadius inverts Radius.
func energyForRadius(r float64) float64 {
	return r * r * math.Pi * EnergyDensity
}
