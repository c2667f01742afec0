package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/tidepool/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPopulationCrash  BookmarkType = "population_crash"
	BookmarkPopulationBoom   BookmarkType = "population_boom"
	BookmarkStablePopulation BookmarkType = "stable_population"
	BookmarkMinimumRescue    BookmarkType = "minimum_rescue"
	BookmarkFoodFamine       BookmarkType = "food_famine"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Year        float64      `csv:"year"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"year", b.Year,
		"description", b.Description,
	)
}

// BookmarkThresholds configures the detector.
type BookmarkThresholds struct {
	CrashDrop     float64 // fractional drop from peak
	BoomRatio     float64 // multiple of the rolling mean
	StableWindows int     // consecutive calm windows
	StableCV      float64 // coefficient of variation ceiling
}

// ThresholdsFromConfig reads detector thresholds from the telemetry config.
func ThresholdsFromConfig(cfg *config.Config) BookmarkThresholds {
	return BookmarkThresholds{
		CrashDrop:     cfg.Telemetry.CrashThreshold,
		BoomRatio:     cfg.Telemetry.BoomThreshold,
		StableWindows: cfg.Telemetry.StableWindows,
		StableCV:      cfg.Telemetry.StableCV,
	}
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	thresholds BookmarkThresholds

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPeak         int  // peak creature count since the last crash
	stableWindowsCount int  // consecutive windows with a calm population
	rescuing           bool // last window needed rescue spawns
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, thresholds BookmarkThresholds) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable population detection
	}
	if thresholds.StableWindows < 1 {
		thresholds.StableWindows = 5
	}
	return &BookmarkDetector{
		thresholds:  thresholds,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkBoom(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStable(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkFamine(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Rescue is edge-triggered on the first window that needed spawns.
	if stats.RescueSpawns > 0 && !bd.rescuing {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkMinimumRescue,
			Tick:        stats.WindowEndTick,
			Year:        stats.Year,
			Description: fmt.Sprintf("%d creatures spawned to hold minimum %d", stats.RescueSpawns, stats.Minimum),
		})
	}
	bd.rescuing = stats.RescueSpawns > 0

	bd.addToHistory(stats)

	if stats.Creatures > bd.recentPeak {
		bd.recentPeak = stats.Creatures
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) counts(history []WindowStats) []float64 {
	out := make([]float64, len(history))
	for i, h := range history {
		out[i] = float64(h.Creatures)
	}
	return out
}

func (bd *BookmarkDetector) checkCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Creatures)/float64(bd.recentPeak)
	if drop > bd.thresholds.CrashDrop && stats.Creatures < bd.recentPeak-5 {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Creatures

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Year:        stats.Year,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Creatures),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkBoom(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	mean := stat.Mean(bd.counts(history), nil)
	if mean == 0 {
		return nil
	}

	if float64(stats.Creatures) > mean*bd.thresholds.BoomRatio && stats.Creatures >= 10 {
		return &Bookmark{
			Type:        BookmarkPopulationBoom,
			Tick:        stats.WindowEndTick,
			Year:        stats.Year,
			Description: fmt.Sprintf("Population %d is %.1fx rolling mean (%.1f)", stats.Creatures, float64(stats.Creatures)/mean, mean),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStable(stats WindowStats) *Bookmark {
	if stats.Creatures < 5 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := bd.counts(history[len(history)-4:])
	mean, std := stat.PopMeanStdDev(recent, nil)

	cv := 0.0
	if mean > 0 {
		cv = std / mean
	}

	if cv < bd.thresholds.StableCV {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == bd.thresholds.StableWindows { // trigger exactly once
		return &Bookmark{
			Type:        BookmarkStablePopulation,
			Tick:        stats.WindowEndTick,
			Year:        stats.Year,
			Description: fmt.Sprintf("Stable population of %d over %d windows", stats.Creatures, bd.thresholds.StableWindows),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkFamine(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	prev := bd.history[(bd.historyIdx+bd.historySize-1)%bd.historySize]
	if prev.TotalFood <= 0 {
		return nil
	}

	if stats.TotalFood < prev.TotalFood*0.5 {
		return &Bookmark{
			Type:        BookmarkFoodFamine,
			Tick:        stats.WindowEndTick,
			Year:        stats.Year,
			Description: fmt.Sprintf("Total food fell from %.1f to %.1f", prev.TotalFood, stats.TotalFood),
		}
	}

	return nil
}
