package snake

import "fmt"

// Direction is the direction the snake is heading in. The values are ordered
// clockwise so that turning is a step around the cycle.
type Direction uint8

const (
	Up Direction = iota
	Right
	Down
	Left
)

const numDirections = 4

// Delta returns the unit vector for the direction. Up increases y.
func (d Direction) Delta() (dx, dy int8) {
	switch d {
	case Up:
		return 0, 1
	case Right:
		return 1, 0
	case Down:
		return 0, -1
	case Left:
		return -1, 0
	default:
		panic("invalid direction")
	}
}

// Left returns the direction after a 90 degree turn to the left.
func (d Direction) Left() Direction {
	return (d + numDirections - 1) % numDirections
}

// Right returns the direction after a 90 degree turn to the right.
func (d Direction) Right() Direction {
	return (d + 1) % numDirections
}

// String returns a string representation of the direction.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}
