package game

import (
	"fmt"
	"testing"

	"github.com/pthm-cable/tidepool/components"
	"github.com/pthm-cable/tidepool/config"
	"github.com/pthm-cable/tidepool/neural"
)

func init() {
	config.MustInit("")
}

// testConfig returns a small world with no rocks.
func testConfig(minimum int) *config.Config {
	cfg := config.Cfg().Clone()
	cfg.World.Width = 20
	cfg.World.Height = 20
	cfg.World.Rocks = 0
	cfg.Population.Minimum = minimum
	return cfg
}

func newTestGame(t *testing.T, cfg *config.Config, behavior Behavior) *Game {
	t.Helper()
	g, err := NewGameWithOptions(Options{Seed: 7, Config: cfg, Behavior: behavior})
	if err != nil {
		t.Fatalf("NewGameWithOptions failed: %v", err)
	}
	return g
}

// placeCreature adds a creature at a fixed spot, facing +x.
func placeCreature(g *Game, x, y, energy float64) Creature {
	brain := neural.NewBrain(g.rng, 1, 0.0005)
	return g.newCreature(
		components.Position{X: x, Y: y},
		components.Body{Energy: energy, Density: 1, BirthTime: g.year, Kind: components.KindCreature},
		components.Organism{ID: g.nextID},
		0.5,
		brain,
	)
}

// idleBehavior does nothing.
type idleBehavior struct{}

func (idleBehavior) Metabolize(Creature, float64)  {}
func (idleBehavior) Think(Creature, float64, bool) {}
func (idleBehavior) Sense(Creature, float64)       {}

// recordingBehavior logs every hook call in order.
type recordingBehavior struct {
	calls     []string
	useOutput []bool
	onThink   func(c Creature, dt float64)
}

func (b *recordingBehavior) Metabolize(c Creature, dt float64) {
	b.calls = append(b.calls, fmt.Sprintf("metabolize %d", c.ID()))
}

func (b *recordingBehavior) Think(c Creature, dt float64, useOutput bool) {
	b.calls = append(b.calls, fmt.Sprintf("think %d", c.ID()))
	b.useOutput = append(b.useOutput, useOutput)
	if b.onThink != nil {
		b.onThink(c, dt)
	}
}

func (b *recordingBehavior) Sense(c Creature, timeStep float64) {
	b.calls = append(b.calls, fmt.Sprintf("sense %d", c.ID()))
}
