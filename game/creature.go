package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tidepool/components"
	"github.com/pthm-cable/tidepool/config"
	"github.com/pthm-cable/tidepool/neural"
	"github.com/pthm-cable/tidepool/systems"
)

// Behavior drives creatures during a step. Metabolize and Think run in the
// creature loop with the raw timestep; Sense runs in the finish pass with
// the scaled timestep.
type Behavior interface {
	Metabolize(c Creature, dt float64)
	Think(c Creature, dt float64, useOutput bool)
	Sense(c Creature, timeStep float64)
}

// Creature is a handle to a living creature. Component pointers returned by
// its accessors are valid until the next entity is created or removed.
type Creature struct {
	g *Game
	e ecs.Entity
}

// Entity returns the ECS entity.
func (c Creature) Entity() ecs.Entity { return c.e }

// Alive reports whether the creature still exists.
func (c Creature) Alive() bool {
	return c.g != nil && c.g.world.Alive(c.e)
}

// ID returns the stable organism ID.
func (c Creature) ID() uint32 { return c.g.orgMap.Get(c.e).ID }

// Organism returns the organism component.
func (c Creature) Organism() *components.Organism { return c.g.orgMap.Get(c.e) }

// Body returns the body component.
func (c Creature) Body() *components.Body { return c.g.bodyMap.Get(c.e) }

// Position returns the position component.
func (c Creature) Position() *components.Position { return c.g.posMap.Get(c.e) }

// Velocity returns the velocity component.
func (c Creature) Velocity() *components.Velocity { return c.g.velMap.Get(c.e) }

// Color returns the color component.
func (c Creature) Color() *components.Color { return c.g.colorMap.Get(c.e) }

// Brain returns the creature's brain.
func (c Creature) Brain() *neural.Brain { return c.g.brains[c.ID()] }

// Senses returns the inputs recorded by the last Sense call.
func (c Creature) Senses() *neural.SensoryInputs { return c.g.senses[c.ID()] }

// Energy returns the current energy.
func (c Creature) Energy() float64 { return c.Body().Energy }

// Age returns the years since birth.
func (c Creature) Age() float64 { return c.g.year - c.Body().BirthTime }

// Radius returns the disk radius.
func (c Creature) Radius() float64 { return systems.Radius(c.Body().Energy) }

// Mass returns the effective mass used as a divisor.
func (c Creature) Mass() float64 {
	b := c.Body()
	return systems.EffectiveMass(b.Energy, b.Density, c.g.cfg.Physics.MinMass)
}

// LoseEnergy removes a positive amount of energy.
func (c Creature) LoseEnergy(amount float64) {
	if amount > 0 {
		c.Body().Energy -= amount
	}
}

// AddEnergy adds energy.
func (c Creature) AddEnergy(amount float64) {
	c.Body().Energy += amount
}

// dropEnergy moves energy from the creature to the tile under it as food.
func (c Creature) dropEnergy(amount float64) {
	if amount <= 0 {
		return
	}
	c.LoseEnergy(amount)
	x, y := c.tile()
	c.g.tiles.AddFood(x, y, amount, c.g.year)
}

func (c Creature) tile() (int, int) {
	p := c.Position()
	return c.g.tiles.Clamped(p.X, p.Y)
}

// Accelerate pushes the creature along its heading. Negative amounts
// reverse and cost more.
func (c Creature) Accelerate(amount, dt float64) {
	cc := &c.g.cfg.Creature
	org := c.Organism()
	dv := amount * dt / c.Mass()
	vel := c.Velocity()
	vel.X += math.Cos(org.Rotation) * dv
	vel.Y += math.Sin(org.Rotation) * dv
	if amount >= 0 {
		c.LoseEnergy(amount * cc.AccelerationEnergy * dt)
	} else {
		c.LoseEnergy(math.Abs(amount * cc.AccelerationBackEnergy * dt))
	}
}

// Rotate adds angular velocity.
func (c Creature) Rotate(amount, dt float64) {
	c.Organism().AngVel += 0.04 * amount * dt / c.Mass()
	c.LoseEnergy(math.Abs(amount * c.g.cfg.Creature.TurnEnergy * c.Energy() * dt))
}

// Eat takes food from the tile under the creature. The gain falls off with
// the distance between the food hue and the mouth hue, and turns into a
// loss past FoodSensitivity. Negative amounts drop food instead.
func (c Creature) Eat(amount, dt float64) {
	cc := &c.g.cfg.Creature
	if amount < 0 {
		c.dropEnergy(-amount * dt)
		c.LoseEnergy(-amount * cc.EatEnergy * dt)
		return
	}

	x, y := c.tile()
	food := c.g.tiles.FoodLevel(x, y, c.g.year)
	eaten := food * (1 - math.Pow(1-cc.EatSpeed, amount*dt))
	if eaten > food {
		eaten = food
	}
	if eaten > 0 {
		c.g.tiles.RemoveFood(x, y, eaten, c.g.year)
		c.g.collector.RecordFoodEaten(eaten)
		c.g.lifetimeTracker.RecordEat(c.ID(), eaten)
	}

	distance := math.Abs(c.g.tiles.At(x, y).FoodType - c.Organism().MouthHue)
	multiplier := 1 - distance/cc.FoodSensitivity
	if multiplier >= 0 {
		c.AddEnergy(eaten * multiplier)
	} else {
		c.LoseEnergy(-eaten * multiplier)
	}
	c.LoseEnergy(amount * cc.EatEnergy * dt)
}

// Fight injures every creature within reach. Injured energy falls to the
// victim's tile as food.
func (c Creature) Fight(amount, dt float64) {
	if amount <= 0 {
		c.Organism().FightLevel = 0
		return
	}
	g := c.g
	cc := &g.cfg.Creature
	c.Organism().FightLevel = amount
	c.LoseEnergy(amount * cc.FightEnergy * c.Energy() * dt)
	g.collector.RecordFight()
	g.lifetimeTracker.RecordFight(c.ID())

	reach := c.Radius() * g.physics.Params().FightRange
	pos := *c.Position()
	for _, other := range g.physics.Neighbors(c.e) {
		if g.bodyMap.Get(other).Kind != components.KindCreature {
			continue
		}
		victim := Creature{g: g, e: other}
		op := victim.Position()
		if math.Hypot(op.X-pos.X, op.Y-pos.Y) < reach+victim.Radius() {
			victim.dropEnergy(amount * cc.InjuredEnergy * dt)
		}
	}
}

// SetHue sets the body hue, wrapped into [0, 1).
func (c Creature) SetHue(h float64) {
	c.Color().Hue = systems.WrapUnit(h)
}

// SetMouthHue sets the mouth hue, wrapped into [0, 1).
func (c Creature) SetMouthHue(h float64) {
	c.Organism().MouthHue = systems.WrapUnit(h)
}

// Reproduce spends babySize energy on a child. It fails when the parent
// does not have more than babySize.
func (c Creature) Reproduce(babySize, dt float64) bool {
	_, ok := c.g.reproduce(c, babySize)
	return ok
}

// Eye layout: angle offsets from the heading and distances in body radii
// plus one.
var (
	eyeAngles    = [neural.NumEyes]float64{0, -0.4, 0.4}
	eyeDistances = [neural.NumEyes]float64{0, 0.7, 0.7}
)

// eyePoint returns the world point sampled by eye i.
func (c Creature) eyePoint(i int) (float64, float64) {
	p := c.Position()
	angle := c.Organism().Rotation + eyeAngles[i]
	d := eyeDistances[i] * (c.Radius() + 1)
	return p.X + math.Cos(angle)*d, p.Y + math.Sin(angle)*d
}

// DefaultBehavior is the brain-driven creature. Its tunables come from the
// creature config section.
type DefaultBehavior struct {
	cfg config.CreatureConfig
}

// NewDefaultBehavior creates the default behavior.
func NewDefaultBehavior(cfg *config.Config) *DefaultBehavior {
	return &DefaultBehavior{cfg: cfg.Creature}
}

// Metabolize burns energy in proportion to energy and age.
func (b *DefaultBehavior) Metabolize(c Creature, dt float64) {
	c.LoseEnergy(c.Energy() * b.cfg.MetabolismEnergy * c.Age() * dt)
}

// Think runs the brain on the last sensed inputs. With useOutput unset the
// brain still runs but nothing is applied.
func (b *DefaultBehavior) Think(c Creature, dt float64, useOutput bool) {
	brain := c.Brain()
	senses := c.Senses()
	if brain == nil || senses == nil {
		return
	}
	out := neural.DecodeOutputs(brain.Forward(senses.ToInputs()))
	if !useOutput {
		return
	}

	c.Accelerate(out.Accelerate, dt)
	c.Rotate(out.Rotate, dt)
	c.Eat(out.Eat, dt)
	c.Fight(out.Fight, dt)
	if out.Reproduce > 0 && c.Age() > b.cfg.MatureAge && c.Energy() > b.cfg.SafeSize {
		c.Reproduce(b.cfg.SafeSize, dt)
	}
	c.SetHue(out.Hue)
	c.SetMouthHue(out.MouthHue)
}

// Sense samples the tile colors under each eye.
func (b *DefaultBehavior) Sense(c Creature, timeStep float64) {
	senses := c.Senses()
	if senses == nil {
		return
	}
	g := c.g
	for i := range senses.Eyes {
		x, y := g.tiles.Clamped(c.eyePoint(i))
		col := g.tiles.Color(x, y, g.year)
		senses.Eyes[i] = neural.EyeSample{Hue: col.Hue, Saturation: col.Saturation, Brightness: col.Brightness}
	}
	senses.Energy = c.Energy()
	senses.MouthHue = c.Organism().MouthHue
}
