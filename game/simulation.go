package game

import (
	"math"

	"github.com/pthm-cable/tidepool/telemetry"
)

// Step advances the world by dt years. Steps run in a fixed order:
// commands, clock and history, climate, stabilization, the creature loop,
// motion and senses, saves, cleanup, then telemetry.
func (g *Game) Step(dt float64) error {
	if dt < 0 {
		return ErrNegativeTimeStep
	}

	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhaseCommands)
	g.drainCommands()

	g.perf.StartPhase(telemetry.PhaseClimate)
	g.advanceClock(dt)
	g.updateClimate(dt)

	g.perf.StartPhase(telemetry.PhaseStabilize)
	for _, e := range g.creatures {
		org := g.orgMap.Get(e)
		org.PrevEnergy = g.bodyMap.Get(e).Energy
	}
	g.maintainMinimum(true)

	g.perf.StartPhase(telemetry.PhaseCreatures)
	g.updateCreatures(dt)

	g.perf.StartPhase(telemetry.PhaseMotion)
	g.finishIterate(dt * g.cfg.Physics.TimestepsPerYear)

	g.perf.StartPhase(telemetry.PhaseSaves)
	g.saves.Check(g.year, g.cfg.Saves.ImageInterval, g.cfg.Saves.TextInterval)
	g.flushSaves()

	g.perf.StartPhase(telemetry.PhaseCleanup)
	g.cleanupDead()

	g.tick++

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perf.EndTick()
	return nil
}

// advanceClock moves the year forward and records the population whenever
// a history bucket boundary is crossed.
func (g *Game) advanceClock(dt float64) {
	prev := g.year
	g.year += dt
	every := g.cfg.Population.RecordEvery
	if every > 0 && math.Floor(g.year/every) != math.Floor(prev/every) {
		g.history.Push(len(g.creatures))
	}
}

// updateClimate computes the temperature and rectifies every tile when the
// growth signal reaches a turning point, so lazy tiles never integrate
// across an extremum unobserved.
func (g *Game) updateClimate(dt float64) {
	season := g.Season()
	temp := g.climate.GrowthEquilibrium(season)
	in := temp - g.climate.GrowthEquilibrium(season-dt)
	out := g.climate.GrowthEquilibrium(season+dt) - temp
	g.temperature = temp
	if in*out <= 0 {
		g.tiles.RectifyAll(g.year)
	}
}

// updateCreatures runs collide, metabolize and think for every creature.
// Children born during the loop are appended and visited in the same step.
func (g *Game) updateCreatures(dt float64) {
	useOutput := !g.userControl
	for i := 0; i < len(g.creatures); i++ {
		c := Creature{g: g, e: g.creatures[i]}

		g.collector.RecordContacts(g.physics.Collide(c.e))
		c.Organism().FightLevel = 0

		g.behavior.Metabolize(c, dt)
		g.behavior.Think(c, dt, useOutput)

		if g.userControl && g.selectedID != 0 && c.ID() == g.selectedID {
			g.applyIntents(c, dt)
		}
	}
}

// finishIterate integrates motion for every body, then lets creatures see.
func (g *Game) finishIterate(timeStep float64) {
	for _, e := range g.rocks {
		g.physics.ApplyMotion(e, timeStep)
	}
	for _, e := range g.creatures {
		c := Creature{g: g, e: e}
		g.physics.ApplyMotion(e, timeStep)

		body := c.Body()
		org := c.Organism()
		org.Rotation += org.AngVel
		org.AngVel *= g.physics.Damping(body.Energy, body.Density)

		g.behavior.Sense(c, timeStep)
	}
}

// flushSaves runs the save hook for every flagged slot.
func (g *Game) flushSaves() {
	g.saves.Flush(g.year, func(slot SaveSlot, count int, year float64) {
		g.events.Add(telemetry.NewSaveEvent(g.tick, year, count))
		if g.saveHook != nil {
			g.saveHook(slot, count, year)
		}
	})
}
