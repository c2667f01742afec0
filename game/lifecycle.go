package game

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tidepool/components"
	"github.com/pthm-cable/tidepool/neural"
	"github.com/pthm-cable/tidepool/systems"
)

// spawnRock creates an inert body. Draws: x, y, energy base.
func (g *Game) spawnRock() ecs.Entity {
	rc := g.cfg.Rock
	x := g.rng.Float64() * float64(g.width)
	y := g.rng.Float64() * float64(g.height)
	base := rc.MinEnergyBase + g.rng.Float64()*(rc.MaxEnergyBase-rc.MinEnergyBase)

	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{}
	body := components.Body{Energy: math.Pow(base, 4), Density: rc.Density, BirthTime: g.year, Kind: components.KindRock}
	color := components.Color{Hue: 0, Saturation: 0, Brightness: 0.5}
	box := components.CellBox{}

	e := g.rockMapper.NewEntity(&pos, &vel, &body, &color, &box)
	g.physics.Place(e)
	g.rocks = append(g.rocks, e)
	return e
}

// spawnCreature creates a fresh creature with a random brain.
// Draws: x, y, energy, rotation, hue, then the brain axons.
func (g *Game) spawnCreature() Creature {
	cc := g.cfg.Creature
	x := g.rng.Float64() * float64(g.width)
	y := g.rng.Float64() * float64(g.height)
	energy := cc.MinEnergy + g.rng.Float64()*(cc.MaxEnergy-cc.MinEnergy)
	rotation := g.rng.Float64() * 2 * math.Pi
	hue := g.rng.Float64()
	brain := neural.NewBrain(g.rng, g.cfg.Mutation.StartVariability, g.cfg.Mutation.StartMutability)

	id := g.nextID
	c := g.newCreature(
		components.Position{X: x, Y: y},
		components.Body{Energy: energy, Density: cc.Density, BirthTime: g.year, Kind: components.KindCreature},
		components.Organism{ID: id, Rotation: rotation, MouthHue: hue},
		hue,
		brain,
	)
	g.lifetimeTracker.Register(id, g.year, id, 0)
	return c
}

// newCreature creates the entity, registers it with physics and stores its
// brain. Existing component pointers are invalid afterwards.
func (g *Game) newCreature(pos components.Position, body components.Body, org components.Organism, hue float64, brain *neural.Brain) Creature {
	g.nextID++
	vel := components.Velocity{}
	color := components.Color{Hue: hue, Saturation: 1, Brightness: 1}
	box := components.CellBox{}

	e := g.creatureMapper.NewEntity(&pos, &vel, &body, &color, &box, &org)
	g.physics.Place(e)
	g.creatures = append(g.creatures, e)
	g.byID[org.ID] = e
	g.brains[org.ID] = brain
	g.senses[org.ID] = &neural.SensoryInputs{Energy: body.Energy, MouthHue: org.MouthHue}
	return Creature{g: g, e: e}
}

// reproduce spends babySize of the parent's energy on a child placed one
// parent radius away at a random angle. Draws: angle, hue jitter, then the
// mutated brain axons.
func (g *Game) reproduce(parent Creature, babySize float64) (Creature, bool) {
	if parent.Energy() <= babySize {
		return Creature{}, false
	}

	angle := g.rng.Float64() * 2 * math.Pi
	jitter := (g.rng.Float64()*2 - 1) * g.cfg.Creature.HueJitter

	parentID := parent.ID()
	brain := g.brains[parentID].Evolve(g.rng)

	parent.LoseEnergy(babySize)
	pBody := *parent.Body()
	pPos := *parent.Position()
	pOrg := *parent.Organism()
	pColor := *parent.Color()

	r := systems.Radius(pBody.Energy)
	cr := systems.Radius(babySize)
	x := clampInWorld(pPos.X+math.Cos(angle)*r, cr, float64(g.width))
	y := clampInWorld(pPos.Y+math.Sin(angle)*r, cr, float64(g.height))

	id := g.nextID
	child := g.newCreature(
		components.Position{X: x, Y: y},
		components.Body{Energy: babySize, Density: pBody.Density, BirthTime: g.year, Kind: components.KindCreature},
		components.Organism{
			ID:         id,
			ParentID:   parentID,
			Generation: pOrg.Generation + 1,
			Rotation:   angle,
			MouthHue:   pOrg.MouthHue,
			PrevEnergy: babySize,
		},
		systems.WrapUnit(pColor.Hue+jitter),
		brain,
	)

	g.lifetimeTracker.Register(id, g.year, g.lifetimeTracker.CladeOf(parentID), pOrg.Generation+1)
	g.lifetimeTracker.RecordChild(parentID)
	g.collector.RecordBirth()
	g.events.Add(newBirthEvent(g, id, parentID, babySize))
	return child, true
}

// maintainMinimum adds creatures until the population reaches the minimum.
// rescue marks spawns made after construction for telemetry.
func (g *Game) maintainMinimum(rescue bool) {
	for len(g.creatures) < g.minimum {
		if g.cfg.Population.StabilizeMode == StabilizeReproduce && len(g.creatures) > 0 {
			idx := int(g.rng.Float64() * float64(len(g.creatures)))
			parent := Creature{g: g, e: g.creatures[idx]}
			parent.AddEnergy(g.cfg.Creature.SafeSize)
			if _, ok := g.reproduce(parent, g.cfg.Creature.SafeSize); ok {
				continue
			}
			// Take the grant back; the fresh spawn below carries its own energy.
			parent.AddEnergy(-g.cfg.Creature.SafeSize)
		}
		c := g.spawnCreature()
		if rescue {
			g.collector.RecordRescueSpawn()
			g.events.Add(newRescueEvent(g, c.ID()))
		}
	}
}

// cleanupDead removes creatures whose energy fell below the survivable
// minimum. Remaining energy returns to the tile underneath as food.
func (g *Game) cleanupDead() {
	kept := g.creatures[:0]
	var dead []ecs.Entity
	for _, e := range g.creatures {
		if g.bodyMap.Get(e).Energy < 1 {
			dead = append(dead, e)
			continue
		}
		kept = append(kept, e)
	}
	g.creatures = kept

	for _, e := range dead {
		g.removeCreature(e)
	}
}

func (g *Game) removeCreature(e ecs.Entity) {
	c := Creature{g: g, e: e}
	id := c.ID()
	energy := c.Energy()
	if energy > 0 {
		x, y := c.tile()
		g.tiles.AddFood(x, y, energy, g.year)
	}

	if ls := g.lifetimeTracker.Remove(id); ls != nil && g.logStats {
		slog.Debug("creature died",
			"id", id,
			"age_years", g.year-ls.BirthYear,
			"generation", ls.Generation,
			"children", ls.Children,
		)
	}
	g.collector.RecordDeath()
	g.events.Add(newDeathEvent(g, id, energy))

	g.physics.Forget(e)
	g.world.RemoveEntity(e)
	delete(g.byID, id)
	delete(g.brains, id)
	delete(g.senses, id)
}

// clampInWorld keeps a disk inside [0, dim], centering it when it cannot fit.
func clampInWorld(v, radius, dim float64) float64 {
	if 2*radius >= dim {
		return dim / 2
	}
	return math.Max(radius, math.Min(v, dim-radius))
}
