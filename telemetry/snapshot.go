package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/pthm-cable/tidepool/neural"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds a diagnostic dump of the world. It is not a resume format.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	RNGSeed int64  `json:"rng_seed"`

	WorldWidth  int `json:"world_width"`
	WorldHeight int `json:"world_height"`

	Year           float64 `json:"year"`
	Tick           int64   `json:"tick"`
	MinTemperature float64 `json:"min_temperature"`
	MaxTemperature float64 `json:"max_temperature"`

	Tiles    []TileState   `json:"tiles"`
	Entities []EntityState `json:"entities"`
	History  []int         `json:"history"`

	Save     *SaveInfo `json:"save,omitempty"`
	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// SaveInfo records which save slot produced a snapshot.
type SaveInfo struct {
	Slot  string `json:"slot"`
	Count int    `json:"count"`
}

// TileState holds one tile's projected state, row-major.
type TileState struct {
	Fertility float64 `json:"fertility"`
	FoodType  float64 `json:"food_type"`
	FoodLevel float64 `json:"food_level"`
}

// EntityState holds one body's state.
type EntityState struct {
	ID   uint32 `json:"id,omitempty"` // 0 for rocks
	Kind string `json:"kind"`

	// Position and movement
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VelX     float64 `json:"vel_x"`
	VelY     float64 `json:"vel_y"`
	Rotation float64 `json:"rotation"`

	Energy  float64 `json:"energy"`
	Density float64 `json:"density"`
	Hue     float64 `json:"hue"`

	// Creature only
	Generation int                  `json:"generation,omitempty"`
	MouthHue   float64              `json:"mouth_hue,omitempty"`
	Brain      *neural.BrainWeights `json:"brain,omitempty"`
	Lifetime   *LifetimeStatsJSON   `json:"lifetime,omitempty"`
}

// LifetimeStatsJSON is the JSON-serializable form of LifetimeStats.
type LifetimeStatsJSON struct {
	BirthYear  float64 `json:"birth_year"`
	AgeYears   float64 `json:"age_years"`
	CladeID    uint32  `json:"clade_id"`
	Children   int     `json:"children"`
	PeakEnergy float64 `json:"peak_energy"`
	TotalEaten float64 `json:"total_eaten"`
	FightTicks int     `json:"fight_ticks"`
}

// ToJSON converts LifetimeStats to its JSON form.
func (ls *LifetimeStats) ToJSON() *LifetimeStatsJSON {
	if ls == nil {
		return nil
	}
	return &LifetimeStatsJSON{
		BirthYear:  ls.BirthYear,
		AgeYears:   ls.AgeYears,
		CladeID:    ls.CladeID,
		Children:   ls.Children,
		PeakEnergy: ls.PeakEnergy,
		TotalEaten: ls.TotalEaten,
		FightTicks: ls.FightTicks,
	}
}

// SaveSnapshot writes a snapshot to dir, zstd-compressed when compress is
// set. Returns the path where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string, compress bool) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	switch {
	case snapshot.Bookmark != nil:
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	case snapshot.Save != nil:
		name = fmt.Sprintf("snapshot_%s_%d", snapshot.Save.Slot, snapshot.Save.Count)
	}
	name += ".json"
	if compress {
		name += ".zst"
	}

	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	if !compress {
		if err := writeJSON(f, snapshot); err != nil {
			return "", err
		}
		return path, f.Close()
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return "", fmt.Errorf("zstd writer: %w", err)
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	if err := writeJSON(bw, snapshot); err != nil {
		enc.Close()
		return "", err
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return "", fmt.Errorf("flush snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("close zstd: %w", err)
	}

	return path, f.Close()
}

func writeJSON(w io.Writer, snapshot *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot from disk. Files ending in .zst are
// decompressed.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer dec.Close()
		r = bufio.NewReaderSize(dec, 256*1024)
	}

	var snapshot Snapshot
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
