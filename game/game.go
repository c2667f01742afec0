// Package game runs the world: the per-tick state machine, population
// stabilization, creature behavior, commands and read-only views.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"path/filepath"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tidepool/components"
	"github.com/pthm-cable/tidepool/config"
	"github.com/pthm-cable/tidepool/neural"
	"github.com/pthm-cable/tidepool/systems"
	"github.com/pthm-cable/tidepool/telemetry"
)

// Sentinel errors.
var (
	ErrNegativeTimeStep = errors.New("game: negative time step")
	ErrNegativeMinimum  = errors.New("game: negative creature minimum")
	ErrCommandQueueFull = errors.New("game: command queue full")
	ErrUnknownCommand   = errors.New("game: unknown command")
)

// Stabilization modes.
const (
	StabilizeSpawn     = "spawn"
	StabilizeReproduce = "reproduce"
)

// Options configures a new game.
type Options struct {
	Seed   int64
	Config *config.Config // nil = config.Cfg()

	Noise    systems.Noise // nil = built from Config.World.Noise and a seed drawn from the rng
	Behavior Behavior      // nil = DefaultBehavior

	SaveHook      SaveHook                    // called for every flushed save slot
	StatsCallback func(telemetry.WindowStats) // called on every stats window flush

	OutputDir string // CSV telemetry and bookmark snapshots, empty = disabled
	LogStats  bool
	RunID     string
}

// Game holds the complete world state. It is not safe for concurrent use;
// see Runner for the concurrent wrapper.
type Game struct {
	cfg  *config.Config
	rng  *rand.Rand
	seed int64

	world          *ecs.World
	rockMapper     *ecs.Map5[components.Position, components.Velocity, components.Body, components.Color, components.CellBox]
	creatureMapper *ecs.Map6[components.Position, components.Velocity, components.Body, components.Color, components.CellBox, components.Organism]
	creatureFilter *ecs.Filter2[components.Body, components.Organism]

	posMap   *ecs.Map1[components.Position]
	velMap   *ecs.Map1[components.Velocity]
	bodyMap  *ecs.Map1[components.Body]
	colorMap *ecs.Map1[components.Color]
	orgMap   *ecs.Map1[components.Organism]

	// Bodies in creation order. Ticks iterate these, never ECS queries.
	rocks     []ecs.Entity
	creatures []ecs.Entity
	byID      map[uint32]ecs.Entity

	brains map[uint32]*neural.Brain
	senses map[uint32]*neural.SensoryInputs

	behavior Behavior

	climate *systems.Climate
	tiles   *systems.TileGrid
	physics *systems.PhysicsSystem
	width   int
	height  int

	// Clock
	tick        int64
	year        float64
	temperature float64

	// Population
	minimum  int
	nextID   uint32
	history  *History
	saves    *SaveScheduler
	saveHook SaveHook

	// Control
	pending     []Command
	intents     []Command
	userControl bool
	selectedID  uint32

	// Telemetry
	collector        *telemetry.Collector
	perf             *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	lifetimeTracker  *telemetry.LifetimeTracker
	events           *telemetry.EventLog
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	runID            string
	snapshotDir      string
}

// NewGameWithOptions builds a world: terrain first, then rocks, then the
// initial population, drawing from a single generator seeded with opts.Seed.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	if cfg.Population.Minimum < 0 {
		return nil, ErrNegativeMinimum
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(opts.Seed)),
		seed: opts.Seed,

		world: world,
		rockMapper: ecs.NewMap5[
			components.Position,
			components.Velocity,
			components.Body,
			components.Color,
			components.CellBox,
		](world),
		creatureMapper: ecs.NewMap6[
			components.Position,
			components.Velocity,
			components.Body,
			components.Color,
			components.CellBox,
			components.Organism,
		](world),
		creatureFilter: ecs.NewFilter2[components.Body, components.Organism](world),

		posMap:   ecs.NewMap1[components.Position](world),
		velMap:   ecs.NewMap1[components.Velocity](world),
		bodyMap:  ecs.NewMap1[components.Body](world),
		colorMap: ecs.NewMap1[components.Color](world),
		orgMap:   ecs.NewMap1[components.Organism](world),

		byID:   make(map[uint32]ecs.Entity),
		brains: make(map[uint32]*neural.Brain),
		senses: make(map[uint32]*neural.SensoryInputs),

		width:  cfg.World.Width,
		height: cfg.World.Height,

		minimum:  cfg.Population.Minimum,
		nextID:   1,
		history:  NewHistory(cfg.Population.HistoryLength),
		saves:    NewSaveScheduler(),
		saveHook: opts.SaveHook,

		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perf:             telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistory, telemetry.ThresholdsFromConfig(cfg)),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		events:           telemetry.NewEventLog(1024),
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		runID:            opts.RunID,
	}

	g.behavior = opts.Behavior
	if g.behavior == nil {
		g.behavior = NewDefaultBehavior(cfg)
	}

	// Noise seed is the first draw so terrain never shifts the body stream.
	noiseSeed := g.rng.Int63()
	noise := opts.Noise
	if noise == nil {
		var err error
		noise, err = systems.NewNoise(cfg.World.Noise, noiseSeed)
		if err != nil {
			return nil, fmt.Errorf("building terrain noise: %w", err)
		}
	}

	g.climate = systems.NewClimateFromConfig(cfg)
	g.tiles = systems.GenerateTiles(noise, g.width, g.height, cfg.World.NoiseStep, g.climate, systems.TileParamsFromConfig(cfg))
	g.physics = systems.NewPhysicsSystem(
		world,
		systems.NewSpatialIndex(g.width, g.height),
		systems.Bounds{Width: float64(g.width), Height: float64(g.height)},
		systems.PhysicsParamsFromConfig(cfg),
	)
	g.temperature = g.climate.GrowthEquilibrium(0)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("creating output manager: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
		g.outputManager = om
		g.snapshotDir = filepath.Join(om.Dir(), "snapshots")
	}

	for i := 0; i < cfg.World.Rocks; i++ {
		g.spawnRock()
	}
	g.maintainMinimum(false)

	terrain := g.tiles.Stats()
	slog.Debug("world created",
		"seed", opts.Seed,
		"width", g.width,
		"height", g.height,
		"water", terrain.Water,
		"rocks", len(g.rocks),
		"creatures", len(g.creatures),
	)

	return g, nil
}

// Close writes the final tile map, then flushes and closes telemetry output.
func (g *Game) Close() error {
	if g.outputManager != nil {
		if _, err := g.outputManager.WriteTileMap("tiles_final.csv", g.TileRows()); err != nil {
			slog.Error("failed to write final tile map", "error", err)
		}
	}
	return g.outputManager.Close()
}

// Config returns the configuration the game was built with.
func (g *Game) Config() *config.Config { return g.cfg }

// Seed returns the rng seed.
func (g *Game) Seed() int64 { return g.seed }

// Width returns the board width in tiles.
func (g *Game) Width() int { return g.width }

// Height returns the board height in tiles.
func (g *Game) Height() int { return g.height }

// Tick returns the number of completed steps.
func (g *Game) Tick() int64 { return g.tick }

// Year returns the world clock in years.
func (g *Game) Year() float64 { return g.year }

// Season returns the fractional part of the year.
func (g *Game) Season() float64 {
	return g.year - math.Floor(g.year)
}

// Temperature returns the growth signal computed on the last step.
func (g *Game) Temperature() float64 { return g.temperature }

// Climate returns the current temperature bounds.
func (g *Game) Climate() (min, max float64) {
	return g.climate.Min(), g.climate.Max()
}

// ThermometerProportions returns the bounds as thermometer proportions.
func (g *Game) ThermometerProportions() (low, high float64) {
	return g.climate.LowProportion(), g.climate.HighProportion()
}

// Tile returns the tile at (x, y) with food projected to the current year.
// ok is false for coordinates outside the board.
func (g *Game) Tile(x, y int) (t systems.Tile, ok bool) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return systems.Tile{}, false
	}
	return g.tiles.Project(x, y, g.year), true
}

// History returns the population history, newest first.
func (g *Game) History() []int { return g.history.Values() }

// HistoryBars returns the history normalized by its maximum.
func (g *Game) HistoryBars() []float64 { return g.history.Bars() }

// CreatureCount returns the number of living creatures.
func (g *Game) CreatureCount() int { return len(g.creatures) }

// RockCount returns the number of rocks.
func (g *Game) RockCount() int { return len(g.rocks) }

// Minimum returns the creature minimum.
func (g *Game) Minimum() int { return g.minimum }

// UserControl reports whether brains are disconnected from their bodies.
func (g *Game) UserControl() bool { return g.userControl }

// SelectedID returns the controlled creature ID, 0 if none.
func (g *Game) SelectedID() uint32 { return g.selectedID }

// SaveCount returns how many saves the slot has flushed.
func (g *Game) SaveCount(slot SaveSlot) int { return g.saves.Count(slot) }

// Creature returns a handle for the creature with the given ID.
func (g *Game) Creature(id uint32) (Creature, bool) {
	e, ok := g.byID[id]
	if !ok {
		return Creature{}, false
	}
	return Creature{g: g, e: e}, true
}

// Creatures returns handles for all living creatures in iteration order.
func (g *Game) Creatures() []Creature {
	out := make([]Creature, len(g.creatures))
	for i, e := range g.creatures {
		out[i] = Creature{g: g, e: e}
	}
	return out
}

// DrainEvents returns and clears the buffered events.
func (g *Game) DrainEvents() []telemetry.Event {
	return g.events.Drain()
}

// Perf returns the current perf window statistics.
func (g *Game) Perf() telemetry.PerfStats {
	return g.perf.Stats()
}

// RecordPublish marks a view publication for perf accounting.
func (g *Game) RecordPublish() {
	g.perf.RecordPublish()
}

// SetMinTemperature sets the minimum temperature from a thermometer
// proportion. Returns true when it crossed the maximum and the bounds were
// swapped.
func (g *Game) SetMinTemperature(p float64) bool {
	g.tiles.RectifyAll(g.year)
	swapped := g.climate.SetMinTemperature(p)
	g.noteTemperatureChange(swapped)
	return swapped
}

// SetMaxTemperature sets the maximum temperature from a thermometer
// proportion. Returns true when the bounds were swapped.
func (g *Game) SetMaxTemperature(p float64) bool {
	g.tiles.RectifyAll(g.year)
	swapped := g.climate.SetMaxTemperature(p)
	g.noteTemperatureChange(swapped)
	return swapped
}

func (g *Game) noteTemperatureChange(swapped bool) {
	min, max := g.climate.Min(), g.climate.Max()
	if swapped {
		g.events.Add(telemetry.Event{Type: telemetry.EventTemperatureSwap, Tick: g.tick, Year: g.year})
		slog.Info("temperature bounds swapped", "min", min, "max", max)
		return
	}
	slog.Debug("temperature bounds changed", "min", min, "max", max)
}

// SetMinimum sets the creature minimum. The next step spawns up to it.
func (g *Game) SetMinimum(n int) error {
	if n < 0 {
		return ErrNegativeMinimum
	}
	g.minimum = n
	return nil
}

// RequestSave flags a save slot. It is flushed at the end of the next step.
func (g *Game) RequestSave(slot SaveSlot) {
	g.saves.Request(slot)
}
