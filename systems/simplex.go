package systems

import "github.com/ojrac/opensimplex-go"

// SimplexNoise is OpenSimplex noise summed over the same octaves as
// PerlinNoise.
type SimplexNoise struct {
	src opensimplex.Noise
}

// NewSimplexNoise creates a seeded OpenSimplex source.
func NewSimplexNoise(seed int64) *SimplexNoise {
	return &SimplexNoise{src: opensimplex.NewNormalized(seed)}
}

// Noise2D returns a value in [0, 1].
func (s *SimplexNoise) Noise2D(x, y float64) float64 {
	return octaves(s.signed, x, y)
}

func (s *SimplexNoise) signed(x, y float64) float64 {
	return s.src.Eval2(x, y)*2 - 1
}
