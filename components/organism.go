package components

// Organism holds creature identity and control state.
type Organism struct {
	ID         uint32  // stable identifier, used for lookups by external layers
	ParentID   uint32  // 0 for fresh spawns
	Generation int     // 0 for fresh spawns
	Rotation   float64 // heading in radians
	AngVel     float64 // radians per scaled timestep
	MouthHue   float64 // food hue this creature digests best
	FightLevel float64 // fight intensity this tick, reset on collide
	PrevEnergy float64 // energy at the start of the tick
}
