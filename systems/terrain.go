package systems

import "math"

// TerrainStats summarizes a generated tile grid.
type TerrainStats struct {
	Water      int
	Land       int
	MeanFert   float64 // over land tiles
	MeanFood   float64 // over all tiles
	MinFoodHue float64
	MaxFoodHue float64
}

// GenerateTiles fills a grid from noise. Fertility blends a fine and a
// coarse layer, with the coarse layer dominating toward the bottom rows.
// Food hue comes from a third, very smooth layer offset far from the others.
func GenerateTiles(noise Noise, cols, rows int, step float64, climate *Climate, params TileParams) *TileGrid {
	g := NewTileGrid(cols, rows, climate, params)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			xs := float64(x) * step
			ys := float64(y) * step
			big := math.Pow(float64(y)/float64(rows), 0.5)
			fert := noise.Noise2D(xs*3, ys*3)*(1-big)*5 +
				noise.Noise2D(xs*0.5, ys*0.5)*big*5 - 1.5
			hue := noise.Noise2D(xs*0.2+10000, ys*0.2+10000)*1.63 - 0.4
			g.Set(x, y, NewTile(fert, clamp(hue, 0, 0.8)))
		}
	}
	return g
}

// Stats computes summary statistics over the grid's current state.
func (g *TileGrid) Stats() TerrainStats {
	s := TerrainStats{MinFoodHue: math.Inf(1), MaxFoodHue: math.Inf(-1)}
	fert, food := 0.0, 0.0
	for _, t := range g.tiles {
		food += t.FoodLevel
		s.MinFoodHue = math.Min(s.MinFoodHue, t.FoodType)
		s.MaxFoodHue = math.Max(s.MaxFoodHue, t.FoodType)
		if t.IsWater() {
			s.Water++
			continue
		}
		s.Land++
		fert += t.Fertility
	}
	if s.Land > 0 {
		s.MeanFert = fert / float64(s.Land)
	}
	if n := len(g.tiles); n > 0 {
		s.MeanFood = food / float64(n)
	}
	return s
}
