package neural

import (
	"math"
	"math/rand"
)

// Mutation shape constants.
const (
	// MutabilityMutability controls how fast the step size itself drifts.
	MutabilityMutability = 0.7
	// MutatePower is the odd exponent applied to weight perturbations.
	// Most draws land near zero, with rare large jumps.
	MutatePower = 9
)

// mutateMulti renormalizes u^MutatePower so Mutability is the characteristic step.
var mutateMulti = math.Pow(0.5, MutatePower)

// Axon is a heritable connection weight with its own mutation step size.
// Axons are values: Mutate returns a new Axon and never changes the receiver.
type Axon struct {
	Weight     float64 `json:"w"`
	Mutability float64 `json:"m"`
}

// NewRandomAxon creates a start-of-world axon with weight uniform in
// [-variability, variability] and the given mutability.
func NewRandomAxon(rng *rand.Rand, variability, mutability float64) Axon {
	return Axon{
		Weight:     pmRand(rng) * variability,
		Mutability: mutability,
	}
}

// Mutate derives a child axon. It draws exactly two values from rng:
// the mutability exponent first, then the weight perturbation.
func (a Axon) Mutate(rng *rand.Rand) Axon {
	mutabilityScale := math.Pow(0.5, pmRand(rng)*MutabilityMutability)
	step := math.Pow(pmRand(rng), MutatePower)
	return Axon{
		Weight:     a.Weight + step*a.Mutability/mutateMulti,
		Mutability: a.Mutability * mutabilityScale,
	}
}

// pmRand returns a uniform value in [-1, 1).
func pmRand(rng *rand.Rand) float64 {
	return rng.Float64()*2 - 1
}
