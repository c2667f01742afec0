// Package systems provides the physics, spatial indexing and ecosystem
// pieces driven by the world loop.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tidepool/components"
)

// SpatialIndex is a uniform grid of unit cells. Each cell lists the bodies
// whose bounding box overlaps it, at most once per body. Membership is kept
// incrementally: a reindex touches only the cells entering or leaving a box.
//
// Cells hold ECS entity handles in insertion order, so neighbor queries are
// deterministic for a given history of updates.
type SpatialIndex struct {
	cols  int
	rows  int
	cells [][]ecs.Entity // flat grid, index = y*cols + x

	seen map[ecs.Entity]struct{} // scratch for Neighbors
}

// NewSpatialIndex creates an empty index with one cell per world unit.
func NewSpatialIndex(cols, rows int) *SpatialIndex {
	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 4)
	}
	return &SpatialIndex{
		cols:  cols,
		rows:  rows,
		cells: cells,
		seen:  make(map[ecs.Entity]struct{}),
	}
}

// Cols returns the grid width in cells.
func (s *SpatialIndex) Cols() int { return s.cols }

// Rows returns the grid height in cells.
func (s *SpatialIndex) Rows() int { return s.rows }

// Reindex recomputes e's box from its position and radius and updates cell
// membership. It returns how many cell insertions and removals were made;
// an unchanged box on an indexed body makes none.
func (s *SpatialIndex) Reindex(e ecs.Entity, box *components.CellBox, x, y, radius, fightRange float64) (added, removed int) {
	next := BoundingBox(x, y, radius, fightRange, s.cols, s.rows)

	if !box.Indexed {
		for cx := next.MinX; cx <= next.MaxX; cx++ {
			for cy := next.MinY; cy <= next.MaxY; cy++ {
				s.add(cx, cy, e)
				added++
			}
		}
		*box = next
		box.Indexed = true
		return added, 0
	}

	if box.Equal(next) {
		return 0, 0
	}

	for cx := box.MinX; cx <= box.MaxX; cx++ {
		for cy := box.MinY; cy <= box.MaxY; cy++ {
			if !next.Contains(cx, cy) {
				s.remove(cx, cy, e)
				removed++
			}
		}
	}
	for cx := next.MinX; cx <= next.MaxX; cx++ {
		for cy := next.MinY; cy <= next.MaxY; cy++ {
			if !box.Contains(cx, cy) {
				s.add(cx, cy, e)
				added++
			}
		}
	}

	*box = next
	box.Indexed = true
	return added, removed
}

// Remove drops e from every cell of its box and marks the box unindexed.
func (s *SpatialIndex) Remove(e ecs.Entity, box *components.CellBox) {
	if !box.Indexed {
		return
	}
	for cx := box.MinX; cx <= box.MaxX; cx++ {
		for cy := box.MinY; cy <= box.MaxY; cy++ {
			s.remove(cx, cy, e)
		}
	}
	box.Indexed = false
}

// Neighbors appends to dst every distinct entity registered in any cell of
// box, excluding e. Cells are scanned x-major, then y.
func (s *SpatialIndex) Neighbors(dst []ecs.Entity, e ecs.Entity, box components.CellBox) []ecs.Entity {
	clear(s.seen)
	for cx := box.MinX; cx <= box.MaxX; cx++ {
		for cy := box.MinY; cy <= box.MaxY; cy++ {
			for _, other := range s.cells[cy*s.cols+cx] {
				if other == e {
					continue
				}
				if _, dup := s.seen[other]; dup {
					continue
				}
				s.seen[other] = struct{}{}
				dst = append(dst, other)
			}
		}
	}
	return dst
}

// At returns the entities registered in cell (x, y). The slice is owned by
// the index and must not be modified.
func (s *SpatialIndex) At(x, y int) []ecs.Entity {
	return s.cells[y*s.cols+x]
}

// Contains reports whether e is registered in cell (x, y).
func (s *SpatialIndex) Contains(x, y int, e ecs.Entity) bool {
	for _, other := range s.cells[y*s.cols+x] {
		if other == e {
			return true
		}
	}
	return false
}

// CellsOf counts the cells e is registered in. Linear in grid size; for
// diagnostics and tests.
func (s *SpatialIndex) CellsOf(e ecs.Entity) int {
	n := 0
	for _, cell := range s.cells {
		for _, other := range cell {
			if other == e {
				n++
				break
			}
		}
	}
	return n
}

func (s *SpatialIndex) add(x, y int, e ecs.Entity) {
	idx := y*s.cols + x
	s.cells[idx] = append(s.cells[idx], e)
}

// remove deletes e from cell (x, y), keeping the order of the other entries.
func (s *SpatialIndex) remove(x, y int, e ecs.Entity) {
	idx := y*s.cols + x
	cell := s.cells[idx]
	for i, other := range cell {
		if other == e {
			s.cells[idx] = append(cell[:i], cell[i+1:]...)
			return
		}
	}
}
