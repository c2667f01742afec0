package telemetry

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/tidepool/neural"
)

func testSnapshot() *Snapshot {
	brain := neural.NewBrain(rand.New(rand.NewSource(1)), 1, 0.0005).Weights()
	return &Snapshot{
		Version:        SnapshotVersion,
		RunID:          "run-1",
		RNGSeed:        42,
		WorldWidth:     10,
		WorldHeight:    8,
		Year:           1.25,
		Tick:           1000,
		MinTemperature: -0.5,
		MaxTemperature: 1,
		Tiles: []TileState{
			{Fertility: 0.4, FoodType: 0.2, FoodLevel: 1.1},
			{Fertility: 1.3, FoodType: 0.5, FoodLevel: 0},
		},
		Entities: []EntityState{
			{
				ID:         7,
				Kind:       "creature",
				X:          1.5,
				Y:          2.5,
				VelX:       0.01,
				VelY:       -0.02,
				Rotation:   1.2,
				Energy:     1.6,
				Density:    1,
				Hue:        0.3,
				Generation: 2,
				MouthHue:   0.25,
				Brain:      &brain,
				Lifetime: &LifetimeStatsJSON{
					BirthYear:  0.5,
					AgeYears:   0.75,
					CladeID:    3,
					Children:   1,
					PeakEnergy: 1.9,
				},
			},
			{Kind: "rock", X: 4, Y: 4, Energy: 3, Density: 5, Hue: 0},
		},
		History: []int{12, 11, 10},
		Bookmark: &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}
}

func TestSnapshotSaveLoad(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "zstd"
		}
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			snapshot := testSnapshot()

			path, err := SaveSnapshot(snapshot, tmpDir, compress)
			if err != nil {
				t.Fatalf("SaveSnapshot failed: %v", err)
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Fatalf("Snapshot file not created at %s", path)
			}

			loaded, err := LoadSnapshot(path)
			if err != nil {
				t.Fatalf("LoadSnapshot failed: %v", err)
			}

			if loaded.Version != snapshot.Version {
				t.Errorf("Version mismatch: got %d, want %d", loaded.Version, snapshot.Version)
			}
			if loaded.RunID != snapshot.RunID {
				t.Errorf("RunID mismatch: got %s, want %s", loaded.RunID, snapshot.RunID)
			}
			if loaded.Tick != snapshot.Tick || loaded.Year != snapshot.Year {
				t.Errorf("clock mismatch: got (%d, %v), want (%d, %v)", loaded.Tick, loaded.Year, snapshot.Tick, snapshot.Year)
			}
			if len(loaded.Tiles) != 2 || len(loaded.Entities) != 2 {
				t.Fatalf("expected 2 tiles and 2 entities, got %d and %d", len(loaded.Tiles), len(loaded.Entities))
			}
			if loaded.Entities[0].Brain == nil || len(loaded.Entities[0].Brain.W1) != len(snapshot.Entities[0].Brain.W1) {
				t.Error("brain weights not restored")
			}
			if loaded.Entities[1].Brain != nil {
				t.Error("expected rock without brain")
			}
			if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkPopulationCrash {
				t.Error("bookmark not restored")
			}
		})
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		snapshot *Snapshot
		compress bool
		want     string
	}{
		{
			name:     "bookmark",
			snapshot: &Snapshot{Tick: 5000, Bookmark: &Bookmark{Type: BookmarkPopulationCrash}},
			want:     "snapshot_5000_population_crash.json",
		},
		{
			name:     "save slot",
			snapshot: &Snapshot{Tick: 10, Save: &SaveInfo{Slot: "auto_text", Count: 3}},
			compress: true,
			want:     "snapshot_auto_text_3.json.zst",
		},
		{
			name:     "plain",
			snapshot: &Snapshot{Tick: 3000},
			want:     "snapshot_3000.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := SaveSnapshot(tt.snapshot, tmpDir, tt.compress)
			if err != nil {
				t.Fatalf("SaveSnapshot failed: %v", err)
			}
			if want := filepath.Join(tmpDir, tt.want); path != want {
				t.Errorf("Path mismatch: got %s, want %s", path, want)
			}
		})
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing snapshot")
	}
}
