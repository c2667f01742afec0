package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTuneLogColumns(t *testing.T) {
	params := NewParamVector()
	path := filepath.Join(t.TempDir(), "tune_log.csv")
	tl, err := newTuneLog(path, params)
	if err != nil {
		t.Fatalf("newTuneLog failed: %v", err)
	}
	vals := params.DefaultVector()
	if n := tl.record(-50, 0.5, vals); n != 1 {
		t.Errorf("expected eval 1, got %d", n)
	}
	if n := tl.record(-60, 0.6, vals); n != 2 {
		t.Errorf("expected eval 2, got %d", n)
	}
	if err := tl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	for i, line := range lines {
		if cols := len(strings.Split(line, ",")); cols != 3+params.Dim() {
			t.Errorf("line %d: expected %d columns, got %d", i, 3+params.Dim(), cols)
		}
	}
	if !strings.HasPrefix(lines[2], "2,-60.000000,0.6000,") {
		t.Errorf("unexpected row %q", lines[2])
	}
}

func TestBestRunKeepsLowest(t *testing.T) {
	b := &bestRun{fitness: 1e9}
	b.offer(-10, []float64{1})
	b.offer(-5, []float64{2})
	b.offer(-20, []float64{3})
	if b.fitness != -20 || b.values[0] != 3 {
		t.Errorf("expected -20 with value 3, got %f with %v", b.fitness, b.values)
	}
}
