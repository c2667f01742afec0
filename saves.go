package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pthm-cable/tidepool/game"
	"github.com/pthm-cable/tidepool/telemetry"
)

// saveExporter writes save slots to disk: image slots as a tile map CSV,
// text slots as a world snapshot.
type saveExporter struct {
	game     *game.Game
	dir      string
	compress bool
}

// Export is the game's save hook. It runs on the simulation goroutine.
func (s *saveExporter) Export(slot game.SaveSlot, count int, year float64) {
	if s.dir == "" || s.game == nil {
		return
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		slog.Error("failed to create save dir", "error", err)
		return
	}

	var (
		path string
		err  error
	)
	if slot.IsImage() {
		path = filepath.Join(s.dir, fmt.Sprintf("%s_%d.csv", slot, count))
		err = telemetry.WriteTileCSV(path, s.game.TileRows())
	} else {
		snap := s.game.Snapshot(&telemetry.SaveInfo{Slot: slot.String(), Count: count}, nil)
		path, err = telemetry.SaveSnapshot(snap, s.dir, s.compress)
	}
	if err != nil {
		slog.Error("save failed", "slot", slot.String(), "count", count, "error", err)
		return
	}
	slog.Info("saved", "slot", slot.String(), "count", count, "year", year, "path", path)
}
