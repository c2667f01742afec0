package telemetry

// LifetimeStats tracks per-creature statistics over its lifetime.
type LifetimeStats struct {
	BirthYear float64
	AgeYears  float64

	// Lineage
	CladeID    uint32 // ID of the fresh-spawned founder
	Generation int

	// Reproduction
	Children int

	// Energy
	PeakEnergy float64
	TotalEaten float64 // cumulative food taken from tiles
	FightTicks int
}

// LifetimeTracker manages per-creature lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new creature with clade info.
func (lt *LifetimeTracker) Register(id uint32, birthYear float64, cladeID uint32, generation int) {
	lt.stats[id] = &LifetimeStats{
		BirthYear:  birthYear,
		CladeID:    cladeID,
		Generation: generation,
	}
}

// Get returns the lifetime stats for a creature, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes a creature's stats and returns them (for logging).
func (lt *LifetimeTracker) Remove(id uint32) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// RecordChild increments children count.
func (lt *LifetimeTracker) RecordChild(parentID uint32) {
	if s := lt.stats[parentID]; s != nil {
		s.Children++
	}
}

// RecordEat adds food eaten to the cumulative total.
func (lt *LifetimeTracker) RecordEat(id uint32, amount float64) {
	if s := lt.stats[id]; s != nil {
		s.TotalEaten += amount
	}
}

// RecordFight counts one tick of fighting.
func (lt *LifetimeTracker) RecordFight(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.FightTicks++
	}
}

// UpdateEnergy tracks peak energy.
func (lt *LifetimeTracker) UpdateEnergy(id uint32, energy float64) {
	if s := lt.stats[id]; s != nil {
		if energy > s.PeakEnergy {
			s.PeakEnergy = energy
		}
	}
}

// UpdateAge refreshes the age from the current world year.
func (lt *LifetimeTracker) UpdateAge(id uint32, year float64) {
	if s := lt.stats[id]; s != nil {
		s.AgeYears = year - s.BirthYear
	}
}

// CladeOf returns the clade for a creature, or 0 if untracked.
func (lt *LifetimeTracker) CladeOf(id uint32) uint32 {
	if s := lt.stats[id]; s != nil {
		return s.CladeID
	}
	return 0
}

// Count returns the number of tracked creatures.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// ActiveCladeCount returns the number of unique clades among living creatures.
func (lt *LifetimeTracker) ActiveCladeCount() int {
	seen := make(map[uint32]struct{})
	for _, stats := range lt.stats {
		seen[stats.CladeID] = struct{}{}
	}
	return len(seen)
}
