package systems

import (
	"fmt"
	"math"
	"math/rand"
)

// Noise is a coherent 2D noise source with values in [0, 1].
type Noise interface {
	Noise2D(x, y float64) float64
}

const (
	noiseOctaves = 4
	noiseFalloff = 0.5
)

// NewNoise returns the named noise implementation seeded with seed.
func NewNoise(kind string, seed int64) (Noise, error) {
	switch kind {
	case "", "perlin":
		return NewPerlinNoise(seed), nil
	case "simplex":
		return NewSimplexNoise(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", kind)
	}
}

// PerlinNoise generates coherent noise values.
type PerlinNoise struct {
	perm [512]int
}

// NewPerlinNoise creates a new Perlin noise generator.
func NewPerlinNoise(seed int64) *PerlinNoise {
	p := &PerlinNoise{}
	rng := rand.New(rand.NewSource(seed))

	// Initialize permutation table
	var perm [256]int
	for i := range perm {
		perm[i] = i
	}

	// Shuffle
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	// Duplicate
	for i := 0; i < 256; i++ {
		p.perm[i] = perm[i]
		p.perm[i+256] = perm[i]
	}

	return p
}

// Noise2D returns a normalized octave sum in [0, 1].
func (p *PerlinNoise) Noise2D(x, y float64) float64 {
	return octaves(p.raw, x, y)
}

// raw returns single-octave gradient noise in roughly [-1, 1].
func (p *PerlinNoise) raw(x, y float64) float64 {
	X := int(math.Floor(x)) & 255
	Y := int(math.Floor(y)) & 255

	x -= math.Floor(x)
	y -= math.Floor(y)

	u := fade(x)
	v := fade(y)

	A := p.perm[X] + Y
	B := p.perm[X+1] + Y

	return lerp(v,
		lerp(u, grad2D(p.perm[A], x, y), grad2D(p.perm[B], x-1, y)),
		lerp(u, grad2D(p.perm[A+1], x, y-1), grad2D(p.perm[B+1], x-1, y-1)))
}

// octaves sums noiseOctaves layers of a [-1, 1] source, each at double
// frequency and noiseFalloff amplitude, and maps the result to [0, 1].
func octaves(src func(x, y float64) float64, x, y float64) float64 {
	sum, amp, freq, norm := 0.0, 1.0, 1.0, 0.0
	for i := 0; i < noiseOctaves; i++ {
		sum += src(x*freq, y*freq) * amp
		norm += amp
		amp *= noiseFalloff
		freq *= 2
	}
	return clamp01(sum/norm*0.5 + 0.5)
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad2D(hash int, x, y float64) float64 {
	h := hash & 7
	u, v := x, y
	if h >= 4 {
		u, v = y, x
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
