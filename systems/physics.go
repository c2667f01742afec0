package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tidepool/components"
	"github.com/pthm-cable/tidepool/config"
)

// Bounds represents the simulation bounds in tile units.
type Bounds struct {
	Width, Height float64
}

// PhysicsParams holds the process-wide physics tunables.
type PhysicsParams struct {
	CollisionForce float64
	Friction       float64
	FightRange     float64
	MinMass        float64
}

// PhysicsParamsFromConfig extracts physics tunables from the config.
func PhysicsParamsFromConfig(cfg *config.Config) PhysicsParams {
	return PhysicsParams{
		CollisionForce: cfg.Physics.CollisionForce,
		Friction:       cfg.Physics.Friction,
		FightRange:     cfg.Physics.FightRange,
		MinMass:        cfg.Physics.MinMass,
	}
}

// PhysicsSystem resolves collisions and integrates motion for soft bodies,
// keeping the spatial index in step with every position or radius change.
type PhysicsSystem struct {
	index  *SpatialIndex
	bounds Bounds
	params PhysicsParams

	posMap  *ecs.Map1[components.Position]
	velMap  *ecs.Map1[components.Velocity]
	bodyMap *ecs.Map1[components.Body]
	boxMap  *ecs.Map1[components.CellBox]

	neighbors []ecs.Entity // scratch
}

// NewPhysicsSystem creates a physics system over the given world and index.
func NewPhysicsSystem(w *ecs.World, index *SpatialIndex, bounds Bounds, params PhysicsParams) *PhysicsSystem {
	return &PhysicsSystem{
		index:   index,
		bounds:  bounds,
		params:  params,
		posMap:  ecs.NewMap1[components.Position](w),
		velMap:  ecs.NewMap1[components.Velocity](w),
		bodyMap: ecs.NewMap1[components.Body](w),
		boxMap:  ecs.NewMap1[components.CellBox](w),
	}
}

// Params returns the physics tunables.
func (s *PhysicsSystem) Params() PhysicsParams { return s.params }

// Index returns the spatial index maintained by this system.
func (s *PhysicsSystem) Index() *SpatialIndex { return s.index }

// Place registers a newly created body with the spatial index.
func (s *PhysicsSystem) Place(e ecs.Entity) {
	s.Refresh(e)
}

// Refresh re-indexes e after a position or energy change made outside
// ApplyMotion.
func (s *PhysicsSystem) Refresh(e ecs.Entity) (added, removed int) {
	pos := s.posMap.Get(e)
	body := s.bodyMap.Get(e)
	box := s.boxMap.Get(e)
	return s.index.Reindex(e, box, pos.X, pos.Y, Radius(body.Energy), s.params.FightRange)
}

// Forget removes e from the spatial index. Call before removing the entity.
func (s *PhysicsSystem) Forget(e ecs.Entity) {
	s.index.Remove(e, s.boxMap.Get(e))
}

// Neighbors returns the distinct bodies sharing a cell with e's box.
// The returned slice is reused by the next call.
func (s *PhysicsSystem) Neighbors(e ecs.Entity) []ecs.Entity {
	s.neighbors = s.index.Neighbors(s.neighbors[:0], e, *s.boxMap.Get(e))
	return s.neighbors
}

// Collide pushes e away from every overlapping neighbor and returns the
// number of contacts. Only e's velocity changes: the neighbor receives its
// own push when it runs Collide. Coincident centers give no direction and
// are skipped.
func (s *PhysicsSystem) Collide(e ecs.Entity) int {
	pos := s.posMap.Get(e)
	vel := s.velMap.Get(e)
	body := s.bodyMap.Get(e)

	radius := Radius(body.Energy)
	mass := EffectiveMass(body.Energy, body.Density, s.params.MinMass)

	contacts := 0
	for _, other := range s.Neighbors(e) {
		oPos := s.posMap.Get(other)
		oBody := s.bodyMap.Get(other)

		dx := pos.X - oPos.X
		dy := pos.Y - oPos.Y
		dist := math.Hypot(dx, dy)
		combined := radius + Radius(oBody.Energy)
		if dist >= combined || dist == 0 {
			continue
		}

		force := combined * s.params.CollisionForce
		vel.X += dx / dist * force / mass
		vel.Y += dy / dist * force / mass
		contacts++
	}
	return contacts
}

// ApplyMotion advances e by its velocity over timeStep, keeps its disk
// inside the world, applies friction and refreshes its index entry.
func (s *PhysicsSystem) ApplyMotion(e ecs.Entity, timeStep float64) {
	pos := s.posMap.Get(e)
	vel := s.velMap.Get(e)
	body := s.bodyMap.Get(e)

	radius := Radius(body.Energy)
	pos.X = boundBody(pos.X+vel.X*timeStep, radius, s.bounds.Width)
	pos.Y = boundBody(pos.Y+vel.Y*timeStep, radius, s.bounds.Height)

	damping := s.Damping(body.Energy, body.Density)
	vel.X *= damping
	vel.Y *= damping

	s.index.Reindex(e, s.boxMap.Get(e), pos.X, pos.Y, radius, s.params.FightRange)
}

// Damping returns the per-step velocity multiplier for a body.
func (s *PhysicsSystem) Damping(energy, density float64) float64 {
	return math.Max(0, 1-s.params.Friction/EffectiveMass(energy, density, s.params.MinMass))
}

// boundBody keeps a disk of the given radius inside [0, dim].
// A disk wider than the world sits at the center.
func boundBody(v, radius, dim float64) float64 {
	if 2*radius >= dim {
		return dim / 2
	}
	return clamp(v, radius, dim-radius)
}
