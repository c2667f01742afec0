// Terrain preview tool: generates the tile grid a world seed would produce
// and prints an ASCII map with summary statistics.
//
// Usage: go run ./cmd/terrainpreview -seed 42 -csv tiles.csv
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/tidepool/config"
	"github.com/pthm-cable/tidepool/systems"
	"github.com/pthm-cable/tidepool/telemetry"
)

// Summary holds terrain statistics for one seed.
type Summary struct {
	Seed       int64   `csv:"seed"`
	Water      int     `csv:"water"`
	Land       int     `csv:"land"`
	LandFrac   float64 `csv:"land_fraction"`
	FertMean   float64 `csv:"fertility_mean"`
	FertStd    float64 `csv:"fertility_std"`
	FertP10    float64 `csv:"fertility_p10"`
	FertP50    float64 `csv:"fertility_p50"`
	FertP90    float64 `csv:"fertility_p90"`
	HueMean    float64 `csv:"food_hue_mean"`
	HueStd     float64 `csv:"food_hue_std"`
	FoodTotal  float64 `csv:"food_total"`
	FoodPerCap float64 `csv:"food_per_creature"`
}

// asciiRamp maps land fertility in [0, rampMax] to characters.
const (
	asciiRamp = ".:-=+*#%@"
	rampMax   = 1.0
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 1, "World seed, as passed to the simulation")
	seeds := flag.Int("seeds", 1, "Number of consecutive seeds to summarize")
	noiseKind := flag.String("noise", "", "Noise kind override (perlin, simplex)")
	mapWidth := flag.Int("map-width", 80, "ASCII map width in characters (0 = no map)")
	csvPath := flag.String("csv", "", "Write the first seed's tiles to this CSV")
	summaryPath := flag.String("summary", "", "Write per-seed summaries to this CSV")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *noiseKind != "" {
		cfg.World.Noise = *noiseKind
	}

	summaries := make([]*Summary, 0, *seeds)
	for i := 0; i < max(*seeds, 1); i++ {
		s := *seed + int64(i)
		grid, err := generate(cfg, s)
		if err != nil {
			log.Fatalf("failed to generate terrain: %v", err)
		}
		sum := summarize(grid, s, cfg.Population.Minimum)
		summaries = append(summaries, sum)

		if i == 0 {
			if *mapWidth > 0 {
				fmt.Print(asciiMap(grid, *mapWidth))
				fmt.Println()
			}
			if *csvPath != "" {
				if err := telemetry.WriteTileCSV(*csvPath, tileRows(grid)); err != nil {
					log.Fatalf("failed to write tiles: %v", err)
				}
				fmt.Printf("Tiles written to %s\n", *csvPath)
			}
		}
		printSummary(sum)
	}

	if *summaryPath != "" {
		f, err := os.Create(*summaryPath)
		if err != nil {
			log.Fatalf("failed to create summary: %v", err)
		}
		defer f.Close()
		if err := gocsv.MarshalFile(&summaries, f); err != nil {
			log.Fatalf("failed to write summary: %v", err)
		}
		fmt.Printf("Summary written to %s\n", *summaryPath)
	}
}

// generate builds the grid exactly as a new world with this seed would:
// the noise seed is the first draw from the world generator.
func generate(cfg *config.Config, seed int64) (*systems.TileGrid, error) {
	noiseSeed := rand.New(rand.NewSource(seed)).Int63()
	noise, err := systems.NewNoise(cfg.World.Noise, noiseSeed)
	if err != nil {
		return nil, err
	}
	climate := systems.NewClimateFromConfig(cfg)
	return systems.GenerateTiles(noise, cfg.World.Width, cfg.World.Height, cfg.World.NoiseStep,
		climate, systems.TileParamsFromConfig(cfg)), nil
}

func summarize(grid *systems.TileGrid, seed int64, minimum int) *Summary {
	cols, rows := grid.Cols(), grid.Rows()
	var fert, hue []float64
	sum := &Summary{Seed: seed}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			t := grid.At(x, y)
			sum.FoodTotal += t.FoodLevel
			hue = append(hue, t.FoodType)
			if t.IsWater() {
				sum.Water++
				continue
			}
			sum.Land++
			fert = append(fert, t.Fertility)
		}
	}
	if n := cols * rows; n > 0 {
		sum.LandFrac = float64(sum.Land) / float64(n)
	}
	if minimum > 0 {
		sum.FoodPerCap = sum.FoodTotal / float64(minimum)
	}
	if len(hue) > 0 {
		sum.HueMean, sum.HueStd = stat.MeanStdDev(hue, nil)
	}
	if len(fert) > 0 {
		sort.Float64s(fert)
		sum.FertMean, sum.FertStd = stat.MeanStdDev(fert, nil)
		sum.FertP10 = stat.Quantile(0.1, stat.Empirical, fert, nil)
		sum.FertP50 = stat.Quantile(0.5, stat.Empirical, fert, nil)
		sum.FertP90 = stat.Quantile(0.9, stat.Empirical, fert, nil)
	}
	return sum
}

// asciiMap renders the grid downsampled to width characters. Water is
// blank; land uses asciiRamp by fertility.
func asciiMap(grid *systems.TileGrid, width int) string {
	cols, rows := grid.Cols(), grid.Rows()
	if width > cols {
		width = cols
	}
	cell := float64(cols) / float64(width)
	// terminal cells are about twice as tall as wide
	height := int(float64(rows) / cell / 2)
	if height < 1 {
		height = 1
	}
	rowCell := float64(rows) / float64(height)

	var b strings.Builder
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			t := grid.At(int(float64(c)*cell), int(float64(r)*rowCell))
			if t.IsWater() {
				b.WriteByte(' ')
				continue
			}
			idx := int(t.Fertility / rampMax * float64(len(asciiRamp)))
			idx = max(0, min(idx, len(asciiRamp)-1))
			b.WriteByte(asciiRamp[idx])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func tileRows(grid *systems.TileGrid) []telemetry.TileRow {
	cols, rows := grid.Cols(), grid.Rows()
	params := grid.Params()
	out := make([]telemetry.TileRow, 0, cols*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			t := grid.At(x, y)
			col := t.DisplayColor(params)
			out = append(out, telemetry.TileRow{
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
	return out
}

func printSummary(s *Summary) {
	fmt.Printf("seed %d: land %d (%.1f%%) water %d | fertility mean %.3f std %.3f p10/p50/p90 %.3f/%.3f/%.3f | food hue %.3f±%.3f | food %.1f (%.2f per creature)\n",
		s.Seed, s.Land, 100*s.LandFrac, s.Water,
		s.FertMean, s.FertStd, s.FertP10, s.FertP50, s.FertP90,
		s.HueMean, s.HueStd, s.FoodTotal, s.FoodPerCap)
}
