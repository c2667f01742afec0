package main

import (
	"math"
	"strings"
	"testing"

	"github.com/pthm-cable/tidepool/config"
)

func init() {
	config.MustInit("")
}

func testConfig() *config.Config {
	cfg := config.Cfg().Clone()
	cfg.World.Width = 30
	cfg.World.Height = 20
	return cfg
}

func TestGenerateMatchesSeed(t *testing.T) {
	cfg := testConfig()
	a, err := generate(cfg, 9)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	b, _ := generate(cfg, 9)
	for y := 0; y < cfg.World.Height; y++ {
		for x := 0; x < cfg.World.Width; x++ {
			if a.At(x, y).Fertility != b.At(x, y).Fertility {
				t.Fatalf("tile (%d, %d) differs between identical seeds", x, y)
			}
		}
	}
}

func TestSummarize(t *testing.T) {
	cfg := testConfig()
	grid, err := generate(cfg, 3)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	s := summarize(grid, 3, 10)

	if s.Water+s.Land != 600 {
		t.Errorf("expected 600 tiles, got %d", s.Water+s.Land)
	}
	if math.Abs(s.LandFrac-float64(s.Land)/600) > 1e-12 {
		t.Errorf("expected land fraction %f, got %f", float64(s.Land)/600, s.LandFrac)
	}
	if s.Land > 0 && (s.FertP10 > s.FertP50 || s.FertP50 > s.FertP90) {
		t.Errorf("expected ordered quantiles, got %f %f %f", s.FertP10, s.FertP50, s.FertP90)
	}
	if math.Abs(s.FoodPerCap-s.FoodTotal/10) > 1e-9 {
		t.Errorf("expected food per creature %f, got %f", s.FoodTotal/10, s.FoodPerCap)
	}
}

func TestASCIIMapShape(t *testing.T) {
	grid, err := generate(testConfig(), 5)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(asciiMap(grid, 15), "\n"), "\n")
	// 30 cols at 15 chars = 2 tiles per char, 20 rows / 2 / 2 = 5 lines
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if len(l) != 15 {
			t.Errorf("line %d: expected width 15, got %d", i, len(l))
		}
	}
}
