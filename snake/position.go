package snake

import "fmt"

// Dim is the width and height of the grid.
const Dim = 5

// GridPosition is a cell on the grid.
type GridPosition struct {
	X, Y int8
}

// Pos is a convenience constructor for GridPosition.
func Pos(x, y int8) GridPosition {
	return GridPosition{X: x, Y: y}
}

// InBounds returns true if the position lies on the grid.
func (p GridPosition) InBounds() bool {
	return p.X >= 0 && p.X < Dim && p.Y >= 0 && p.Y < Dim
}

// Step returns the position one cell away in the given direction. Each axis
// wraps around to the opposite edge. Only a single step of overflow is
// handled, which is all a move can produce.
func (p GridPosition) Step(d Direction) GridPosition {
	dx, dy := d.Delta()
	return GridPosition{
		X: wrap(p.X + dx),
		Y: wrap(p.Y + dy),
	}
}

func wrap(v int8) int8 {
	switch {
	case v < 0:
		return Dim - 1
	case v >= Dim:
		return 0
	default:
		return v
	}
}

// String returns a string representation of the position.
func (p GridPosition) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
