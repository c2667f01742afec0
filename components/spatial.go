package components

// Position represents a body's world position in tile units.
type Position struct {
	X, Y float64
}

// Velocity represents a body's velocity in tile units per scaled timestep.
type Velocity struct {
	X, Y float64
}

// CellBox is the inclusive range of spatial index cells a body occupies.
// Indexed is false until the body has been registered with the index.
type CellBox struct {
	MinX, MinY int
	MaxX, MaxY int
	Indexed    bool
}

// Equal reports whether two boxes cover the same cells.
func (b CellBox) Equal(o CellBox) bool {
	return b.MinX == o.MinX && b.MinY == o.MinY && b.MaxX == o.MaxX && b.MaxY == o.MaxY
}

// Contains reports whether cell (x, y) lies inside the box.
func (b CellBox) Contains(x, y int) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Cells returns the number of cells covered by the box.
func (b CellBox) Cells() int {
	return (b.MaxX - b.MinX + 1) * (b.MaxY - b.MinY + 1)
}
