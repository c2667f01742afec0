package telemetry

import (
	"testing"

	"github.com/pthm-cable/tidepool/config"
)

func init() {
	config.MustInit("")
}

func newTestDetector() *BookmarkDetector {
	return NewBookmarkDetector(10, ThresholdsFromConfig(config.Cfg()))
}

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := newTestDetector()

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 100), Creatures: 100})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 600, Creatures: 30})
	if !hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("expected population_crash bookmark")
	}

	// Peak resets after a crash, so the same level does not re-trigger.
	bookmarks = bd.Check(WindowStats{WindowEndTick: 700, Creatures: 30})
	if hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("expected no repeated crash bookmark")
	}
}

func TestBookmarkDetector_PopulationBoom(t *testing.T) {
	bd := newTestDetector()

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 100), Creatures: 20})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 600, Creatures: 60})
	if !hasBookmark(bookmarks, BookmarkPopulationBoom) {
		t.Error("expected population_boom bookmark")
	}
}

func TestBookmarkDetector_StablePopulation(t *testing.T) {
	bd := newTestDetector()
	windows := config.Cfg().Telemetry.StableWindows

	found := 0
	for i := 0; i < windows+10; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndTick: int64(i * 100), Creatures: 60 + i%2})
		if hasBookmark(bookmarks, BookmarkStablePopulation) {
			found++
		}
	}

	if found != 1 {
		t.Errorf("expected exactly 1 stable_population bookmark, got %d", found)
	}
}

func TestBookmarkDetector_MinimumRescueEdgeTriggered(t *testing.T) {
	bd := newTestDetector()

	first := bd.Check(WindowStats{RescueSpawns: 60, Minimum: 60})
	if !hasBookmark(first, BookmarkMinimumRescue) {
		t.Error("expected minimum_rescue bookmark on first rescue window")
	}

	second := bd.Check(WindowStats{RescueSpawns: 3, Minimum: 60})
	if hasBookmark(second, BookmarkMinimumRescue) {
		t.Error("expected no bookmark while rescue continues")
	}

	bd.Check(WindowStats{RescueSpawns: 0, Minimum: 60})
	third := bd.Check(WindowStats{RescueSpawns: 1, Minimum: 60})
	if !hasBookmark(third, BookmarkMinimumRescue) {
		t.Error("expected bookmark after rescue resumes")
	}
}

func TestBookmarkDetector_FoodFamine(t *testing.T) {
	bd := newTestDetector()

	for i := 0; i < 4; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 100), Creatures: 40, TotalFood: 1000})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 500, Creatures: 40, TotalFood: 300})
	if !hasBookmark(bookmarks, BookmarkFoodFamine) {
		t.Error("expected food_famine bookmark")
	}
}
