package components

// Body holds the physical state shared by every simulated object.
// Radius and mass are derived from Energy and Density, never stored.
type Body struct {
	Energy    float64
	Density   float64 // fixed at creation
	BirthTime float64 // world year at creation
	Kind      Kind
}

// Color holds display channels in HSB, each in [0, 1].
// The simulation passes these through untouched except for creature hue.
type Color struct {
	Hue        float64
	Saturation float64
	Brightness float64
}
