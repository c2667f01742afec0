package game

import (
	"time"

	"github.com/pthm-cable/tidepool/components"
	"github.com/pthm-cable/tidepool/systems"
	"github.com/pthm-cable/tidepool/telemetry"
)

// View is a deep read-only copy of the world at one tick. Nothing in it
// aliases game state, so it can be handed to other goroutines.
type View struct {
	Tick        int64   `json:"tick"`
	Year        float64 `json:"year"`
	Season      float64 `json:"season"`
	Temperature float64 `json:"temperature"`

	MinTemperature  float64 `json:"min_temperature"`
	MaxTemperature  float64 `json:"max_temperature"`
	ThermometerLow  float64 `json:"thermometer_low"`
	ThermometerHigh float64 `json:"thermometer_high"`

	Width  int `json:"width"`
	Height int `json:"height"`

	Creatures   int    `json:"creatures"`
	Rocks       int    `json:"rocks"`
	Minimum     int    `json:"minimum"`
	UserControl bool   `json:"user_control"`
	SelectedID  uint32 `json:"selected_id,omitempty"`

	Tiles       []TileView `json:"-"`
	Bodies      []BodyView `json:"-"`
	History     []int      `json:"history"`
	HistoryBars []float64  `json:"-"`
	SaveCounts  [4]int     `json:"save_counts"`

	AvgTick time.Duration     `json:"avg_tick_ns"`
	Events  []telemetry.Event `json:"events,omitempty"`
}

// TileView is one tile with food projected to the view's year.
type TileView struct {
	Fertility float64          `json:"fertility"`
	FoodType  float64          `json:"food_type"`
	FoodLevel float64          `json:"food_level"`
	Water     bool             `json:"water,omitempty"`
	Color     components.Color `json:"color"`
}

// BodyView is one rock or creature.
type BodyView struct {
	ID       uint32           `json:"id,omitempty"`
	Kind     string           `json:"kind"`
	X        float64          `json:"x"`
	Y        float64          `json:"y"`
	VelX     float64          `json:"vel_x"`
	VelY     float64          `json:"vel_y"`
	Energy   float64          `json:"energy"`
	Radius   float64          `json:"radius"`
	Rotation float64          `json:"rotation"`
	Color    components.Color `json:"color"`

	Generation int     `json:"generation,omitempty"`
	MouthHue   float64 `json:"mouth_hue,omitempty"`
	Age        float64 `json:"age,omitempty"`
}

// View builds a snapshot of the current state without mutating it.
func (g *Game) View() *View {
	min, max := g.climate.Min(), g.climate.Max()
	low, high := g.ThermometerProportions()
	v := &View{
		Tick:            g.tick,
		Year:            g.year,
		Season:          g.Season(),
		Temperature:     g.temperature,
		MinTemperature:  min,
		MaxTemperature:  max,
		ThermometerLow:  low,
		ThermometerHigh: high,
		Width:           g.width,
		Height:          g.height,
		Creatures:       len(g.creatures),
		Rocks:           g.RockCount(),
		Minimum:         g.minimum,
		UserControl:     g.userControl,
		SelectedID:      g.selectedID,
		History:         g.history.Values(),
		HistoryBars:     g.history.Bars(),
		AvgTick:         g.perf.Stats().AvgTickDuration,
	}
	for slot := SaveSlot(0); slot < numSaveSlots; slot++ {
		v.SaveCounts[slot] = g.SaveCount(slot)
	}

	params := g.tiles.Params()
	tiles := g.tiles.Snapshot(g.year)
	v.Tiles = make([]TileView, len(tiles))
	for i := range tiles {
		t := &tiles[i]
		v.Tiles[i] = TileView{
			Fertility: t.Fertility,
			FoodType:  t.FoodType,
			FoodLevel: t.FoodLevel,
			Water:     t.IsWater(),
			Color:     t.DisplayColor(params),
		}
	}

	v.Bodies = make([]BodyView, 0, len(g.rocks)+len(g.creatures))
	for _, e := range g.rocks {
		pos := g.posMap.Get(e)
		vel := g.velMap.Get(e)
		body := g.bodyMap.Get(e)
		v.Bodies = append(v.Bodies, BodyView{
			Kind:   body.Kind.String(),
			X:      pos.X,
			Y:      pos.Y,
			VelX:   vel.X,
			VelY:   vel.Y,
			Energy: body.Energy,
			Radius: systems.Radius(body.Energy),
			Color:  *g.colorMap.Get(e),
		})
	}
	for _, e := range g.creatures {
		c := Creature{g: g, e: e}
		pos := c.Position()
		vel := c.Velocity()
		body := c.Body()
		org := c.Organism()
		v.Bodies = append(v.Bodies, BodyView{
			ID:         org.ID,
			Kind:       body.Kind.String(),
			X:          pos.X,
			Y:          pos.Y,
			VelX:       vel.X,
			VelY:       vel.Y,
			Energy:     body.Energy,
			Radius:     systems.Radius(body.Energy),
			Rotation:   org.Rotation,
			Color:      *c.Color(),
			Generation: org.Generation,
			MouthHue:   org.MouthHue,
			Age:        c.Age(),
		})
	}
	return v
}

// TileAt returns the tile view at (x, y).
func (v *View) TileAt(x, y int) (TileView, bool) {
	if x < 0 || y < 0 || x >= v.Width || y >= v.Height {
		return TileView{}, false
	}
	return v.Tiles[y*v.Width+x], true
}

// Body returns the creature with the given ID.
func (v *View) Body(id uint32) (BodyView, bool) {
	for _, b := range v.Bodies {
		if b.ID == id && b.Kind == components.KindCreature.String() {
			return b, true
		}
	}
	return BodyView{}, false
}
