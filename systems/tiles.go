package systems

import (
	"math"

	"github.com/pthm-cable/tidepool/components"
	"github.com/pthm-cable/tidepool/config"
)

// TileParams holds the food growth tunables.
type TileParams struct {
	MaxGrowthLevel float64 // food cap approached during growth
	FoodGrowthRate float64
	RectifyEpsilon float64 // minimum time gap that triggers a rectify
}

// TileParamsFromConfig extracts tile tunables from the config.
func TileParamsFromConfig(cfg *config.Config) TileParams {
	return TileParams{
		MaxGrowthLevel: cfg.Tiles.MaxGrowthLevel,
		FoodGrowthRate: cfg.Tiles.FoodGrowthRate,
		RectifyEpsilon: cfg.Tiles.RectifyEpsilon,
	}
}

// Tile is one cell of ground. Fertility above 1 marks water.
// FoodLevel is current as of LastUpdate.
type Tile struct {
	Fertility  float64
	FoodType   float64 // hue of the food grown here, fixed at creation
	FoodLevel  float64
	LastUpdate float64
}

// NewTile creates a tile with food equal to its fertility.
func NewTile(fertility, foodType float64) Tile {
	f := math.Max(0, fertility)
	return Tile{
		Fertility: f,
		FoodType:  foodType,
		FoodLevel: f,
	}
}

// IsWater reports whether the tile grows nothing.
func (t *Tile) IsWater() bool {
	return t.Fertility > 1
}

// Rectify brings FoodLevel up to date at time upto using the closed-form
// growth integral. Repeated calls with the same upto are no-ops, and two
// consecutive rectifies match a single one over the combined range.
func (t *Tile) Rectify(upto float64, c *Climate, p TileParams) {
	if math.Abs(t.LastUpdate-upto) < p.RectifyEpsilon {
		return
	}
	t.FoodLevel = t.project(upto, c, p)
	t.LastUpdate = upto
}

// Project returns the food level Rectify would produce without changing t.
func (t Tile) Project(upto float64, c *Climate, p TileParams) float64 {
	if math.Abs(t.LastUpdate-upto) < p.RectifyEpsilon {
		return t.FoodLevel
	}
	return t.project(upto, c, p)
}

func (t *Tile) project(upto float64, c *Climate, p TileParams) float64 {
	if t.IsWater() {
		return 0
	}
	food := t.FoodLevel
	growth := c.IntegratedGrowth(t.LastUpdate, upto)
	if growth > 0 {
		if food < p.MaxGrowthLevel {
			food = p.MaxGrowthLevel - (p.MaxGrowthLevel-food)*math.Exp(-growth*t.Fertility*p.FoodGrowthRate)
		}
	} else {
		food *= math.Exp(growth * p.FoodGrowthRate)
	}
	return math.Max(food, 0)
}

// Display colors in HSB.
var (
	barrenColor  = components.Color{Hue: 0, Saturation: 0, Brightness: 1}
	fertileColor = components.Color{Hue: 0, Saturation: 0, Brightness: 0.2}
	blackColor   = components.Color{Hue: 0, Saturation: 1, Brightness: 0}
	waterColor   = components.Color{Hue: 0, Saturation: 0, Brightness: 0}
)

// DisplayColor returns the tile color for its current food level. Land
// shifts from the barren/fertile ramp toward the food hue as food grows,
// then darkens once food passes the cap.
func (t *Tile) DisplayColor(p TileParams) components.Color {
	if t.IsWater() {
		return waterColor
	}
	food := components.Color{Hue: t.FoodType, Saturation: 1, Brightness: 1}
	if t.FoodLevel < p.MaxGrowthLevel {
		ground := interColor(barrenColor, fertileColor, t.Fertility)
		return interColorFixedHue(ground, food, t.FoodLevel/p.MaxGrowthLevel, food.Hue)
	}
	return interColorFixedHue(food, blackColor, 1-p.MaxGrowthLevel/t.FoodLevel, food.Hue)
}

func interColor(a, b components.Color, x float64) components.Color {
	return components.Color{
		Hue:        inter(a.Hue, b.Hue, x),
		Saturation: inter(a.Saturation, b.Saturation, x),
		Brightness: inter(a.Brightness, b.Brightness, x),
	}
}

// interColorFixedHue blends saturation and brightness only. Black counts
// as fully saturated.
func interColorFixedHue(a, b components.Color, x, hue float64) components.Color {
	satB := b.Saturation
	if b.Brightness == 0 {
		satB = 1
	}
	return components.Color{
		Hue:        hue,
		Saturation: inter(a.Saturation, satB, x),
		Brightness: inter(a.Brightness, b.Brightness, x),
	}
}

// TileGrid is the cols x rows ground layer. Reads that depend on food
// rectify the touched tile first.
type TileGrid struct {
	cols, rows int
	tiles      []Tile // index = y*cols + x
	climate    *Climate
	params     TileParams
}

// NewTileGrid creates a grid of empty land tiles.
func NewTileGrid(cols, rows int, climate *Climate, params TileParams) *TileGrid {
	return &TileGrid{
		cols:    cols,
		rows:    rows,
		tiles:   make([]Tile, cols*rows),
		climate: climate,
		params:  params,
	}
}

// Cols returns the grid width.
func (g *TileGrid) Cols() int { return g.cols }

// Rows returns the grid height.
func (g *TileGrid) Rows() int { return g.rows }

// Params returns the tile tunables.
func (g *TileGrid) Params() TileParams { return g.params }

// Set replaces the tile at (x, y).
func (g *TileGrid) Set(x, y int, t Tile) {
	g.tiles[y*g.cols+x] = t
}

// At returns the tile at (x, y) for direct access.
func (g *TileGrid) At(x, y int) *Tile {
	return &g.tiles[y*g.cols+x]
}

// Clamped returns the cell coordinates under world point (fx, fy),
// clamped into the grid.
func (g *TileGrid) Clamped(fx, fy float64) (int, int) {
	return clampInt(int(math.Floor(fx)), 0, g.cols-1), clampInt(int(math.Floor(fy)), 0, g.rows-1)
}

// RectifyAll brings every tile up to date.
func (g *TileGrid) RectifyAll(upto float64) {
	for i := range g.tiles {
		g.tiles[i].Rectify(upto, g.climate, g.params)
	}
}

// FoodLevel rectifies the tile and returns its food.
func (g *TileGrid) FoodLevel(x, y int, upto float64) float64 {
	t := g.At(x, y)
	t.Rectify(upto, g.climate, g.params)
	return t.FoodLevel
}

// RemoveFood rectifies the tile, then subtracts amount.
func (g *TileGrid) RemoveFood(x, y int, amount, upto float64) {
	t := g.At(x, y)
	t.Rectify(upto, g.climate, g.params)
	t.FoodLevel -= amount
}

// AddFood rectifies the tile, then adds amount.
func (g *TileGrid) AddFood(x, y int, amount, upto float64) {
	t := g.At(x, y)
	t.Rectify(upto, g.climate, g.params)
	t.FoodLevel += amount
}

// Color rectifies the tile and returns its display color.
func (g *TileGrid) Color(x, y int, upto float64) components.Color {
	t := g.At(x, y)
	t.Rectify(upto, g.climate, g.params)
	return t.DisplayColor(g.params)
}

// Project returns the tile at (x, y) with its food projected to upto,
// leaving the grid untouched.
func (g *TileGrid) Project(x, y int, upto float64) Tile {
	t := *g.At(x, y)
	t.FoodLevel = t.Project(upto, g.climate, g.params)
	return t
}

// TotalFood sums projected food over all tiles.
func (g *TileGrid) TotalFood(upto float64) float64 {
	total := 0.0
	for _, t := range g.tiles {
		total += t.Project(upto, g.climate, g.params)
	}
	return total
}

// Snapshot returns a projected copy of every tile in row-major order.
func (g *TileGrid) Snapshot(upto float64) []Tile {
	out := make([]Tile, len(g.tiles))
	for i, t := range g.tiles {
		t.FoodLevel = t.Project(upto, g.climate, g.params)
		out[i] = t
	}
	return out
}
