package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/tidepool/config"
)

// Append-only CSV logs kept open for the life of a run.
const (
	logTelemetry = iota
	logPerf
	logBookmarks
	numLogs
)

var logNames = [numLogs]string{"telemetry.csv", "perf.csv", "bookmarks.csv"}

// csvLog is an open CSV file that writes its header with the first row.
type csvLog struct {
	f       *os.File
	started bool
}

func appendRow[T any](l *csvLog, row T) error {
	rows := []T{row}
	if l.started {
		return gocsv.MarshalWithoutHeaders(rows, l.f)
	}
	if err := gocsv.Marshal(rows, l.f); err != nil {
		return err
	}
	l.started = true
	return nil
}

// OutputManager owns a run's output directory: the telemetry, perf and
// bookmark logs plus one-off files (config, tile maps). A nil manager
// ignores every write.
type OutputManager struct {
	dir  string
	logs [numLogs]csvLog
}

// NewOutputManager creates dir and opens the logs. An empty dir disables
// output and returns nil.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	for i, name := range logNames {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", name, err)
		}
		om.logs[i].f = f
	}
	return om, nil
}

// WriteConfig saves the run configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := appendRow(&om.logs[logTelemetry], stats); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}
	if err := appendRow(&om.logs[logPerf], stats.ToCSV(windowEnd)); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := appendRow(&om.logs[logBookmarks], b); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// TileRow is one tile of an exported tile map.
type TileRow struct {
	X          int     `csv:"x"`
	Y          int     `csv:"y"`
	Fertility  float64 `csv:"fertility"`
	FoodType   float64 `csv:"food_type"`
	FoodLevel  float64 `csv:"food_level"`
	Hue        float64 `csv:"hue"`
	Saturation float64 `csv:"saturation"`
	Brightness float64 `csv:"brightness"`
}

// WriteTileMap writes rows to name inside the output directory and returns
// the path.
func (om *OutputManager) WriteTileMap(name string, rows []TileRow) (string, error) {
	if om == nil {
		return "", nil
	}
	path := filepath.Join(om.dir, name)
	if err := WriteTileCSV(path, rows); err != nil {
		return "", err
	}
	return path, nil
}

// WriteTileCSV writes tile rows to path with a header.
func WriteTileCSV(path string, rows []TileRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		return fmt.Errorf("writing tile map: %w", err)
	}
	return f.Close()
}

// Dir returns the output directory, or "" when disabled.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every open log.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var errs []error
	for i := range om.logs {
		if f := om.logs[i].f; f != nil {
			errs = append(errs, f.Close())
			om.logs[i].f = nil
		}
	}
	return errors.Join(errs...)
}
