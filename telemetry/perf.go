package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Step phases, in tick order.
const (
	PhaseCommands  = "commands"
	PhaseClimate   = "climate"
	PhaseStabilize = "stabilize"
	PhaseCreatures = "creatures"
	PhaseMotion    = "motion"
	PhaseSaves     = "saves"
	PhaseCleanup   = "cleanup"
	PhaseTelemetry = "telemetry"
)

var phaseOrder = []string{
	PhaseCommands, PhaseClimate, PhaseStabilize, PhaseCreatures,
	PhaseMotion, PhaseSaves, PhaseCleanup, PhaseTelemetry,
}

type tickSample struct {
	total  time.Duration
	phases map[string]time.Duration
}

// PerfCollector times steps and their phases over a ring of recent ticks.
// Phases are open-ended: each StartPhase closes the previous one.
type PerfCollector struct {
	ring []tickSample
	next int
	full bool

	cur        tickSample
	tickStart  time.Time
	phase      string
	phaseStart time.Time

	lastPublish     time.Time
	publishInterval time.Duration
}

// NewPerfCollector keeps the last window ticks; window < 1 means 60.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]tickSample, window)}
}

func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = tickSample{phases: make(map[string]time.Duration, len(phaseOrder))}
	p.phase = ""
}

func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phase, p.phaseStart = phase, now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next++
	if p.next == len(p.ring) {
		p.next, p.full = 0, true
	}
}

// RecordPublish notes a view publication; Stats reports the latest interval.
func (p *PerfCollector) RecordPublish() {
	now := time.Now()
	if !p.lastPublish.IsZero() {
		p.publishInterval = now.Sub(p.lastPublish)
	}
	p.lastPublish = now
}

func (p *PerfCollector) samples() []tickSample {
	if p.full {
		return p.ring
	}
	return p.ring[:p.next]
}

// PerfStats summarizes the collector window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // share of the average tick

	PublishInterval time.Duration
	PublishRate     float64 // views per second
}

func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:        make(map[string]time.Duration),
		PhasePct:        make(map[string]float64),
		PublishInterval: p.publishInterval,
	}
	if p.publishInterval > 0 {
		s.PublishRate = float64(time.Second) / float64(p.publishInterval)
	}

	samples := p.samples()
	if len(samples) == 0 {
		return s
	}

	totals := make([]float64, len(samples))
	sums := make(map[string]time.Duration)
	for i, smp := range samples {
		totals[i] = float64(smp.total)
		for name, d := range smp.phases {
			sums[name] += d
		}
	}

	avg := stat.Mean(totals, nil)
	s.AvgTickDuration = time.Duration(avg)
	s.MinTickDuration = time.Duration(floats.Min(totals))
	s.MaxTickDuration = time.Duration(floats.Max(totals))
	if avg > 0 {
		s.TicksPerSecond = float64(time.Second) / avg
	}

	n := time.Duration(len(samples))
	for name, sum := range sums {
		s.PhaseAvg[name] = sum / n
		if avg > 0 {
			s.PhasePct[name] = float64(sum/n) / avg * 100
		}
	}
	return s
}

// LogStats logs the window at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "window", s)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.PublishRate > 0 {
		attrs = append(attrs, slog.Float64("publish_rate", s.PublishRate))
	}
	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int64   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	PublishRate  float64 `csv:"publish_rate"`
	CommandsPct  float64 `csv:"commands_pct"`
	ClimatePct   float64 `csv:"climate_pct"`
	StabilizePct float64 `csv:"stabilize_pct"`
	CreaturesPct float64 `csv:"creatures_pct"`
	MotionPct    float64 `csv:"motion_pct"`
	SavesPct     float64 `csv:"saves_pct"`
	CleanupPct   float64 `csv:"cleanup_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	pct := s.PhasePct
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		PublishRate:  s.PublishRate,
		CommandsPct:  pct[PhaseCommands],
		ClimatePct:   pct[PhaseClimate],
		StabilizePct: pct[PhaseStabilize],
		CreaturesPct: pct[PhaseCreatures],
		MotionPct:    pct[PhaseMotion],
		SavesPct:     pct[PhaseSaves],
		CleanupPct:   pct[PhaseCleanup],
		TelemetryPct: pct[PhaseTelemetry],
	}
}
