// Package components defines ECS components for the simulation.
package components

// Kind distinguishes the body types sharing the physics components.
type Kind uint8

const (
	KindRock     Kind = iota // inert, never eats or thinks
	KindCreature             // carries an Organism component
)

// String returns the kind name used in snapshots and logs.
func (k Kind) String() string {
	switch k {
	case KindRock:
		return "rock"
	case KindCreature:
		return "creature"
	default:
		return "unknown"
	}
}
