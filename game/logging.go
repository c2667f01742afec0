package game

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/pthm-cable/tidepool/telemetry"
)

// logWriter is the destination for log output.
var logWriter io.Writer = os.Stdout

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	fmt.Fprintln(logWriter, fmt.Sprintf(format, args...))
}

// logPerfStats writes the perf window as a human-readable table.
func (g *Game) logPerfStats(s telemetry.PerfStats) {
	Logf("=== Perf @ Tick %d (year %.3f) | %.0f ticks/s ===", g.tick, g.year, s.TicksPerSecond)
	Logf("Avg step time: %s (min %s, max %s)",
		s.AvgTickDuration.Round(time.Microsecond),
		s.MinTickDuration.Round(time.Microsecond),
		s.MaxTickDuration.Round(time.Microsecond),
	)

	names := make([]string, 0, len(s.PhaseAvg))
	for name := range s.PhaseAvg {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return s.PhaseAvg[names[i]] > s.PhaseAvg[names[j]]
	})
	for _, name := range names {
		Logf("  %-12s %10s  %5.1f%%", name, s.PhaseAvg[name].Round(time.Microsecond), s.PhasePct[name])
	}

	g.logWorldState()
	Logf("")
}

// logWorldState writes population and ground totals.
func (g *Game) logWorldState() {
	var total, minE, maxE float64
	minE = -1
	for _, e := range g.creatures {
		energy := g.bodyMap.Get(e).Energy
		total += energy
		if minE < 0 || energy < minE {
			minE = energy
		}
		if energy > maxE {
			maxE = energy
		}
	}
	avg := 0.0
	if len(g.creatures) > 0 {
		avg = total / float64(len(g.creatures))
	} else {
		minE = 0
	}

	Logf("  creatures: %d (min %d) | rocks: %d", len(g.creatures), g.minimum, len(g.rocks))
	Logf("  energy: avg %.3f  min %.3f  max %.3f", avg, minE, maxE)
	Logf("  temperature: %.3f in [%.2f, %.2f] | food: %.1f",
		g.temperature, g.climate.Min(), g.climate.Max(), g.tiles.TotalFood(g.year))
}
