// Package neural provides the heritable axon mutation operator and the
// feedforward creature brains built from axons.
package neural

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Network dimensions.
const (
	NumInputs  = 11 // 3 eyes x (hue, saturation, brightness) + energy + mouth hue
	NumHidden  = 10
	NumOutputs = 7 // accelerate, rotate, eat, fight, reproduce, hue, mouth hue
)

// Brain is a two-layer feedforward network whose every weight is an Axon.
// Each layer has a trailing bias column. Brains are immutable once built;
// the dense matrices are materialized from the axons at construction.
type Brain struct {
	hiddenAxons [NumHidden][NumInputs + 1]Axon
	outputAxons [NumOutputs][NumHidden + 1]Axon

	w1 *mat.Dense // NumHidden x (NumInputs+1)
	w2 *mat.Dense // NumOutputs x (NumHidden+1)
}

// NewBrain creates a brain with random axons. Axons are drawn row-major,
// hidden layer first.
func NewBrain(rng *rand.Rand, variability, mutability float64) *Brain {
	b := &Brain{}
	for i := range b.hiddenAxons {
		for j := range b.hiddenAxons[i] {
			b.hiddenAxons[i][j] = NewRandomAxon(rng, variability, mutability)
		}
	}
	for i := range b.outputAxons {
		for j := range b.outputAxons[i] {
			b.outputAxons[i][j] = NewRandomAxon(rng, variability, mutability)
		}
	}
	b.materialize()
	return b
}

// Evolve returns a child brain with every axon mutated, in the same order
// NewBrain draws them.
func (b *Brain) Evolve(rng *rand.Rand) *Brain {
	child := &Brain{}
	for i := range b.hiddenAxons {
		for j := range b.hiddenAxons[i] {
			child.hiddenAxons[i][j] = b.hiddenAxons[i][j].Mutate(rng)
		}
	}
	for i := range b.outputAxons {
		for j := range b.outputAxons[i] {
			child.outputAxons[i][j] = b.outputAxons[i][j].Mutate(rng)
		}
	}
	child.materialize()
	return child
}

func (b *Brain) materialize() {
	b.w1 = mat.NewDense(NumHidden, NumInputs+1, nil)
	for i := range b.hiddenAxons {
		for j, a := range b.hiddenAxons[i] {
			b.w1.Set(i, j, a.Weight)
		}
	}
	b.w2 = mat.NewDense(NumOutputs, NumHidden+1, nil)
	for i := range b.outputAxons {
		for j, a := range b.outputAxons[i] {
			b.w2.Set(i, j, a.Weight)
		}
	}
}

// Forward computes the network outputs, each in [-1, 1].
// Missing inputs are treated as zero.
func (b *Brain) Forward(inputs []float64) []float64 {
	x := mat.NewVecDense(NumInputs+1, nil)
	for i := 0; i < NumInputs && i < len(inputs); i++ {
		x.SetVec(i, inputs[i])
	}
	x.SetVec(NumInputs, 1) // bias

	var hiddenRaw mat.VecDense
	hiddenRaw.MulVec(b.w1, x)

	h := mat.NewVecDense(NumHidden+1, nil)
	for i := 0; i < NumHidden; i++ {
		h.SetVec(i, math.Tanh(hiddenRaw.AtVec(i)))
	}
	h.SetVec(NumHidden, 1) // bias

	var outRaw mat.VecDense
	outRaw.MulVec(b.w2, h)

	outputs := make([]float64, NumOutputs)
	for i := range outputs {
		outputs[i] = math.Tanh(outRaw.AtVec(i))
	}
	return outputs
}

// HiddenAxon returns the axon feeding hidden unit i from input j (j == NumInputs is bias).
func (b *Brain) HiddenAxon(i, j int) Axon {
	return b.hiddenAxons[i][j]
}

// OutputAxon returns the axon feeding output i from hidden unit j (j == NumHidden is bias).
func (b *Brain) OutputAxon(i, j int) Axon {
	return b.outputAxons[i][j]
}

// BrainWeights holds flattened network weights for serialization.
type BrainWeights struct {
	W1 []float64 `json:"w1"` // [NumHidden * (NumInputs+1)]
	W2 []float64 `json:"w2"` // [NumOutputs * (NumHidden+1)]
}

// Weights flattens the network weights row-major.
func (b *Brain) Weights() BrainWeights {
	bw := BrainWeights{
		W1: make([]float64, 0, NumHidden*(NumInputs+1)),
		W2: make([]float64, 0, NumOutputs*(NumHidden+1)),
	}
	for i := range b.hiddenAxons {
		for _, a := range b.hiddenAxons[i] {
			bw.W1 = append(bw.W1, a.Weight)
		}
	}
	for i := range b.outputAxons {
		for _, a := range b.outputAxons[i] {
			bw.W2 = append(bw.W2, a.Weight)
		}
	}
	return bw
}

// MeanMutability returns the average step size across all axons.
func (b *Brain) MeanMutability() float64 {
	var sum float64
	var n int
	for i := range b.hiddenAxons {
		for _, a := range b.hiddenAxons[i] {
			sum += a.Mutability
			n++
		}
	}
	for i := range b.outputAxons {
		for _, a := range b.outputAxons[i] {
			sum += a.Mutability
			n++
		}
	}
	return sum / float64(n)
}
