package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tidepool/components"
	"github.com/pthm-cable/tidepool/telemetry"
)

func newBirthEvent(g *Game, childID, parentID uint32, energy float64) telemetry.Event {
	return telemetry.NewBirthEvent(g.tick, g.year, childID, parentID, energy)
}

func newDeathEvent(g *Game, id uint32, energy float64) telemetry.Event {
	return telemetry.NewDeathEvent(g.tick, g.year, id, energy)
}

func newRescueEvent(g *Game, id uint32) telemetry.Event {
	return telemetry.NewRescueSpawnEvent(g.tick, g.year, id)
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.year) {
		return
	}

	stats := g.collector.Flush(g.sampleWorld())
	perfStats := g.perf.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
		g.logPerfStats(perfStats)
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	bookmarks := g.bookmarkDetector.Check(stats)
	for _, bm := range bookmarks {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleWorld measures the population for a stats window. It refreshes
// lifetime ages and peaks on the way.
func (g *Game) sampleWorld() telemetry.Sample {
	energies := make([]float64, 0, len(g.creatures))
	var maxGen int
	var mutSum float64
	var mutN int

	query := g.creatureFilter.Query()
	for query.Next() {
		body, org := query.Get()
		energies = append(energies, body.Energy)
		if org.Generation > maxGen {
			maxGen = org.Generation
		}
		if brain := g.brains[org.ID]; brain != nil {
			mutSum += brain.MeanMutability()
			mutN++
		}
		g.lifetimeTracker.UpdateEnergy(org.ID, body.Energy)
		g.lifetimeTracker.UpdateAge(org.ID, g.year)
	}

	var meanMut float64
	if mutN > 0 {
		meanMut = mutSum / float64(mutN)
	}

	return telemetry.Sample{
		Tick:           g.tick,
		Year:           g.year,
		Temperature:    g.temperature,
		Creatures:      len(g.creatures),
		Rocks:          len(g.rocks),
		Minimum:        g.minimum,
		Energies:       energies,
		TotalFood:      g.tiles.TotalFood(g.year),
		MaxGeneration:  maxGen,
		MeanMutability: meanMut,
		ActiveClades:   g.lifetimeTracker.ActiveCladeCount(),
	}
}

// saveSnapshot writes a bookmark snapshot to the snapshot directory.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := g.Snapshot(nil, bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir, g.cfg.Telemetry.CompressSnapshots)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// Snapshot builds a diagnostic dump of the current state. Tile food is
// projected, so building one never changes the world.
func (g *Game) Snapshot(save *telemetry.SaveInfo, bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:        telemetry.SnapshotVersion,
		RunID:          g.runID,
		RNGSeed:        g.seed,
		WorldWidth:     g.width,
		WorldHeight:    g.height,
		Year:           g.year,
		Tick:           g.tick,
		MinTemperature: g.climate.Min(),
		MaxTemperature: g.climate.Max(),
		History:        g.history.Values(),
		Save:           save,
		Bookmark:       bookmark,
	}

	tiles := g.tiles.Snapshot(g.year)
	snapshot.Tiles = make([]telemetry.TileState, len(tiles))
	for i, t := range tiles {
		snapshot.Tiles[i] = telemetry.TileState{Fertility: t.Fertility, FoodType: t.FoodType, FoodLevel: t.FoodLevel}
	}

	snapshot.Entities = make([]telemetry.EntityState, 0, len(g.rocks)+len(g.creatures))
	for _, e := range g.rocks {
		snapshot.Entities = append(snapshot.Entities, g.entityState(e))
	}
	for _, e := range g.creatures {
		snapshot.Entities = append(snapshot.Entities, g.entityState(e))
	}

	return snapshot
}

func (g *Game) entityState(e ecs.Entity) telemetry.EntityState {
	pos := g.posMap.Get(e)
	vel := g.velMap.Get(e)
	body := g.bodyMap.Get(e)
	color := g.colorMap.Get(e)

	state := telemetry.EntityState{
		Kind:    body.Kind.String(),
		X:       pos.X,
		Y:       pos.Y,
		VelX:    vel.X,
		VelY:    vel.Y,
		Energy:  body.Energy,
		Density: body.Density,
		Hue:     color.Hue,
	}
	if body.Kind != components.KindCreature {
		return state
	}

	org := g.orgMap.Get(e)
	state.ID = org.ID
	state.Rotation = org.Rotation
	state.Generation = org.Generation
	state.MouthHue = org.MouthHue
	if brain := g.brains[org.ID]; brain != nil {
		w := brain.Weights()
		state.Brain = &w
	}
	state.Lifetime = g.lifetimeTracker.Get(org.ID).ToJSON()
	return state
}

// TileRows returns the projected tile map with display colors, row-major.
func (g *Game) TileRows() []telemetry.TileRow {
	params := g.tiles.Params()
	rows := make([]telemetry.TileRow, 0, g.width*g.height)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			t := g.tiles.Project(x, y, g.year)
			col := t.DisplayColor(params)
			rows = append(rows, telemetry.TileRow{
				X:          x,
				Y:          y,
				Fertility:  t.Fertility,
				FoodType:   t.FoodType,
				FoodLevel:  t.FoodLevel,
				Hue:        col.Hue,
				Saturation: col.Saturation,
				Brightness: col.Brightness,
			})
		}
	}
	return rows
}
