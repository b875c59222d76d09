// Package snake implements the snake model: a fixed-capacity body moving on
// a toroidal grid.
package snake

import (
	"github.com/pkg/errors"
)

// Capacity is the size of the backing array for the body. No snake can be
// longer than the number of cells on the grid.
const Capacity = Dim * Dim

var (
	// ErrCapacityExceeded is returned by Grow when the snake is already at its
	// maximum length.
	ErrCapacityExceeded = errors.New("snake capacity exceeded")
	// ErrInvalidLength is returned by New when the maximum length is out of
	// range.
	ErrInvalidLength = errors.New("invalid maximum length")
	// ErrOutOfBounds is returned by New when the head is not on the grid.
	ErrOutOfBounds = errors.New("position out of bounds")
)

// Snake is the snake. The body is stored head-first in a fixed array; only the
// first Len segments are alive, the rest are stale.
//
// A Snake is not safe for concurrent use.
type Snake struct {
	segments  [Capacity]GridPosition
	length    int
	maxLen    int
	direction Direction
	turns     uint32
}

// New creates a snake of length 1 with its head at the given position, heading
// up. maxLen must be within [1, Capacity].
func New(head GridPosition, maxLen int) (*Snake, error) {
	if maxLen < 1 || maxLen > Capacity {
		return nil, errors.Wrapf(ErrInvalidLength, "%d not in [1, %d]", maxLen, Capacity)
	}
	if !head.InBounds() {
		return nil, errors.Wrapf(ErrOutOfBounds, "head %s", head)
	}

	s := &Snake{
		length:    1,
		maxLen:    maxLen,
		direction: Up,
	}
	s.segments[0] = head
	return s, nil
}

// Head returns the head segment.
func (s *Snake) Head() GridPosition { return s.segments[0] }

// Len returns the number of live segments.
func (s *Snake) Len() int { return s.length }

// MaxLen returns the maximum length of the snake.
func (s *Snake) MaxLen() int { return s.maxLen }

// Direction returns the current direction.
func (s *Snake) Direction() Direction { return s.direction }

// Turns returns the number of turns issued so far.
func (s *Snake) Turns() uint32 { return s.turns }

// Segment returns the i-th live segment, 0 being the head.
func (s *Snake) Segment(i int) GridPosition {
	if i < 0 || i >= s.length {
		panic("segment index out of range")
	}
	return s.segments[i]
}

// Segments returns the live segments, head first. The returned slice aliases
// the snake's storage and is only valid until the next mutation.
func (s *Snake) Segments() []GridPosition {
	return s.segments[:s.length]
}

// TurnLeft rotates the direction 90 degrees to the left. The snake does not
// move until the next Advance.
func (s *Snake) TurnLeft() {
	s.turns++
	s.direction = s.direction.Left()
}

// TurnRight rotates the direction 90 degrees to the right. The snake does not
// move until the next Advance.
func (s *Snake) TurnRight() {
	s.turns++
	s.direction = s.direction.Right()
}

// Advance moves the snake one cell in its current direction. Every segment
// takes the previous position of the one before it. If deleteTail is false,
// the last live segment is shifted into the slot past the end instead of
// being dropped, unless the backing array is already full. The length itself
// is left to the caller.
func (s *Snake) Advance(deleteTail bool) {
	count := s.length
	if deleteTail || count == Capacity {
		count--
	}

	// copy has memmove semantics, so every slot receives its predecessor's
	// value from before the tick.
	copy(s.segments[1:count+1], s.segments[:count])
	s.segments[0] = s.segments[0].Step(s.direction)
}

// Grow advances the snake without dropping its tail, making it one segment
// longer. It returns ErrCapacityExceeded and leaves the snake unchanged if the
// snake is already at its maximum length.
func (s *Snake) Grow() error {
	if s.length >= s.maxLen {
		return ErrCapacityExceeded
	}
	s.Advance(false)
	s.length++
	return nil
}
