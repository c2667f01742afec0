package telemetry

// Collector accumulates events within time windows and produces WindowStats.
// Windows are measured in world years; the tick count is carried along for
// CSV alignment with perf output.
type Collector struct {
	windowYears float64

	// Current window tracking
	windowStartYear float64
	windowStartTick int64

	// Event counters for current window
	births        int
	deaths        int
	rescueSpawns  int
	contacts      int
	fightingTicks int
	foodEaten     float64
}

// NewCollector creates a new stats collector.
// windowYears: how long each stats window lasts in world years
func NewCollector(windowYears float64) *Collector {
	if windowYears <= 0 {
		windowYears = 0.1
	}
	return &Collector{windowYears: windowYears}
}

// RecordBirth records a reproduction.
func (c *Collector) RecordBirth() {
	c.births++
}

// RecordDeath records a creature removed for lack of energy.
func (c *Collector) RecordDeath() {
	c.deaths++
}

// RecordRescueSpawn records a fresh spawn made to hold the minimum.
func (c *Collector) RecordRescueSpawn() {
	c.rescueSpawns++
}

// RecordContacts adds collision contacts from one Collide call.
func (c *Collector) RecordContacts(n int) {
	c.contacts += n
}

// RecordFight records one creature fighting for one tick.
func (c *Collector) RecordFight() {
	c.fightingTicks++
}

// RecordFoodEaten adds food removed from tiles by eating.
func (c *Collector) RecordFoodEaten(amount float64) {
	c.foodEaten += amount
}

// ShouldFlush returns true once the window has covered windowYears.
func (c *Collector) ShouldFlush(year float64) bool {
	return year-c.windowStartYear >= c.windowYears
}

// Sample is the world state the caller measures at flush time.
type Sample struct {
	Tick           int64
	Year           float64
	Temperature    float64
	Creatures      int
	Rocks          int
	Minimum        int
	Energies       []float64
	TotalFood      float64
	MaxGeneration  int
	MeanMutability float64
	ActiveClades   int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(s Sample) WindowStats {
	mean, p10, p50, p90 := ComputeEnergyStats(s.Energies)

	var total float64
	for _, e := range s.Energies {
		total += e
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   s.Tick,
		Year:            s.Year,
		Temperature:     s.Temperature,

		Creatures: s.Creatures,
		Rocks:     s.Rocks,
		Minimum:   s.Minimum,

		Births:        c.births,
		Deaths:        c.deaths,
		RescueSpawns:  c.rescueSpawns,
		Contacts:      c.contacts,
		FightingTicks: c.fightingTicks,

		EnergyMean: mean,
		EnergyP10:  p10,
		EnergyP50:  p50,
		EnergyP90:  p90,

		TotalFood:      s.TotalFood,
		TotalCreatures: total,
		FoodEaten:      c.foodEaten,

		MaxGeneration:  s.MaxGeneration,
		MeanMutability: s.MeanMutability,
		ActiveClades:   s.ActiveClades,
	}

	// Reset for next window
	c.windowStartYear = s.Year
	c.windowStartTick = s.Tick
	c.births = 0
	c.deaths = 0
	c.rescueSpawns = 0
	c.contacts = 0
	c.fightingTicks = 0
	c.foodEaten = 0

	return stats
}
