package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tidepool/components"
)

// assertMembership checks that e is in exactly the cells of box.
func assertMembership(t *testing.T, idx *SpatialIndex, e ecs.Entity, box components.CellBox) {
	t.Helper()
	for x := 0; x < idx.Cols(); x++ {
		for y := 0; y < idx.Rows(); y++ {
			want := box.Contains(x, y)
			if got := idx.Contains(x, y, e); got != want {
				t.Errorf("cell (%d,%d): expected membership %v, got %v", x, y, want, got)
			}
		}
	}
	if got := idx.CellsOf(e); got != box.Cells() {
		t.Errorf("expected %d cells, got %d", box.Cells(), got)
	}
}

func TestReindexMatchesBoundingBox(t *testing.T) {
	bw := newBodyWorld()
	idx := NewSpatialIndex(10, 10)
	e := bw.spawn(5.5, 5.5, energyForRadius(0.6), 1)

	var box components.CellBox
	added, removed := idx.Reindex(e, &box, 5.5, 5.5, 0.6, 2.0)
	if added != 9 || removed != 0 {
		t.Errorf("expected (9, 0), got (%d, %d)", added, removed)
	}
	if !box.Indexed {
		t.Error("expected box to be marked indexed")
	}
	assertMembership(t, idx, e, box)
}

func TestReindexUnchangedIsNoop(t *testing.T) {
	bw := newBodyWorld()
	idx := NewSpatialIndex(10, 10)
	e := bw.spawn(5.5, 5.5, energyForRadius(0.6), 1)

	var box components.CellBox
	idx.Reindex(e, &box, 5.5, 5.5, 0.6, 2.0)

	// Small move inside the same cell range.
	added, removed := idx.Reindex(e, &box, 5.52, 5.48, 0.6, 2.0)
	if added != 0 || removed != 0 {
		t.Errorf("expected no membership changes, got (%d, %d)", added, removed)
	}
	assertMembership(t, idx, e, box)
}

func TestReindexIncremental(t *testing.T) {
	bw := newBodyWorld()
	idx := NewSpatialIndex(10, 10)
	e := bw.spawn(5.5, 5.5, energyForRadius(0.6), 1)

	var box components.CellBox
	idx.Reindex(e, &box, 5.5, 5.5, 0.6, 2.0) // cells 4..6

	// Shift one column right: cells 5..7.
	added, removed := idx.Reindex(e, &box, 6.5, 5.5, 0.6, 2.0)
	if added != 3 || removed != 3 {
		t.Errorf("expected (3, 3), got (%d, %d)", added, removed)
	}
	assertMembership(t, idx, e, box)

	// Shrink to a single cell.
	added, removed = idx.Reindex(e, &box, 6.5, 5.5, 0.01, 2.0)
	if added != 0 || removed != 8 {
		t.Errorf("expected (0, 8), got (%d, %d)", added, removed)
	}
	assertMembership(t, idx, e, box)
}

func TestReindexClampsAtEdges(t *testing.T) {
	bw := newBodyWorld()
	idx := NewSpatialIndex(10, 10)
	e := bw.spawn(0.1, 9.9, energyForRadius(0.6), 1)

	var box components.CellBox
	added, _ := idx.Reindex(e, &box, 0.1, 9.9, 0.6, 2.0)
	if added != 4 {
		t.Errorf("expected 4 clamped cells, got %d", added)
	}
	assertMembership(t, idx, e, box)
}

func TestNeighborsDistinctAndExcludeSelf(t *testing.T) {
	bw := newBodyWorld()
	idx := NewSpatialIndex(10, 10)

	a := bw.spawn(5.5, 5.5, 1, 1)
	b := bw.spawn(5.6, 5.4, 1, 1)
	c := bw.spawn(9.5, 9.5, 1, 1)

	var boxA, boxB, boxC components.CellBox
	idx.Reindex(a, &boxA, 5.5, 5.5, 0.6, 2.0)
	idx.Reindex(b, &boxB, 5.6, 5.4, 0.6, 2.0)
	idx.Reindex(c, &boxC, 9.5, 9.5, 0.01, 2.0)

	got := idx.Neighbors(nil, a, boxA)
	if len(got) != 1 || got[0] != b {
		t.Fatalf("expected only b as neighbor, got %v", got)
	}

	got = idx.Neighbors(nil, c, boxC)
	if len(got) != 0 {
		t.Errorf("expected no neighbors for c, got %v", got)
	}
}

func TestRemoveClearsMembership(t *testing.T) {
	bw := newBodyWorld()
	idx := NewSpatialIndex(10, 10)
	a := bw.spawn(2.5, 2.5, 1, 1)
	b := bw.spawn(2.6, 2.6, 1, 1)

	var boxA, boxB components.CellBox
	idx.Reindex(a, &boxA, 2.5, 2.5, 0.6, 2.0)
	idx.Reindex(b, &boxB, 2.6, 2.6, 0.6, 2.0)

	idx.Remove(a, &boxA)
	if boxA.Indexed {
		t.Error("expected box to be unindexed after Remove")
	}
	if got := idx.CellsOf(a); got != 0 {
		t.Errorf("expected 0 cells after Remove, got %d", got)
	}
	if got := idx.Neighbors(nil, b, boxB); len(got) != 0 {
		t.Errorf("expected removed body to vanish from neighbors, got %v", got)
	}

	// Re-adding an unindexed body inserts its whole box.
	added, _ := idx.Reindex(a, &boxA, 2.5, 2.5, 0.6, 2.0)
	if added != boxA.Cells() {
		t.Errorf("expected %d cells re-added, got %d", boxA.Cells(), added)
	}
}
