package neural

// NumEyes is the number of tile sample points a creature looks at.
const NumEyes = 3

// EyeSample holds the display color of the tile under one eye.
type EyeSample struct {
	Hue        float64
	Saturation float64
	Brightness float64
}

// SensoryInputs holds the raw sensory data before flattening.
type SensoryInputs struct {
	Eyes     [NumEyes]EyeSample
	Energy   float64 // absolute energy, halved when flattened
	MouthHue float64 // [0,1]
}

// ToInputs flattens sensory data into the network input layout:
//
//	[0-8]  eye hue, saturation, brightness for each eye
//	[9]    energy / 2
//	[10]   mouth hue
func (s *SensoryInputs) ToInputs() []float64 {
	inputs := make([]float64, NumInputs)
	for i, eye := range s.Eyes {
		inputs[i*3] = eye.Hue
		inputs[i*3+1] = eye.Saturation
		inputs[i*3+2] = eye.Brightness
	}
	inputs[NumEyes*3] = s.Energy / 2
	inputs[NumEyes*3+1] = s.MouthHue
	return inputs
}

// BehaviorOutputs holds the decoded outputs from the brain network.
type BehaviorOutputs struct {
	Accelerate float64 // [-1,1], negative reverses
	Rotate     float64 // [-1,1]
	Eat        float64 // [-1,1], negative drops food
	Fight      float64 // [-1,1], only positive values fight
	Reproduce  float64 // > 0 requests a birth
	Hue        float64 // body hue [0,1]
	MouthHue   float64 // mouth hue [0,1]
}

// DecodeOutputs converts raw network outputs to intent values.
// Hue channels use the magnitude of the tanh output.
func DecodeOutputs(raw []float64) BehaviorOutputs {
	if len(raw) < NumOutputs {
		return BehaviorOutputs{}
	}
	return BehaviorOutputs{
		Accelerate: raw[0],
		Rotate:     raw[1],
		Eat:        raw[2],
		Fight:      raw[3],
		Reproduce:  raw[4],
		Hue:        abs(raw[5]),
		MouthHue:   abs(raw[6]),
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
