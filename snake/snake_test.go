package snake

import (
	"testing"

	"github.com/pkg/errors"
)

func mustNew(t *testing.T, head GridPosition, maxLen int) *Snake {
	t.Helper()

	s, err := New(head, maxLen)
	if err != nil {
		t.Fatalf("failed to create snake: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	s := mustNew(t, Pos(3, 1), 5)

	if s.Head() != Pos(3, 1) {
		t.Errorf("head = %s, expected (3,1)", s.Head())
	}
	if s.Len() != 1 {
		t.Errorf("length = %d, expected 1", s.Len())
	}
	if s.Direction() != Up {
		t.Errorf("direction = %s, expected up", s.Direction())
	}
	if s.Turns() != 0 {
		t.Errorf("turns = %d, expected 0", s.Turns())
	}
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name   string
		head   GridPosition
		maxLen int
		err    error
	}{
		{"zero length", Pos(2, 2), 0, ErrInvalidLength},
		{"too long", Pos(2, 2), Capacity + 1, ErrInvalidLength},
		{"negative x", Pos(-1, 2), 5, ErrOutOfBounds},
		{"y past edge", Pos(2, Dim), 5, ErrOutOfBounds},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.head, test.maxLen)
			if !errors.Is(err, test.err) {
				t.Fatalf("expected %v, got %v", test.err, err)
			}
		})
	}
}

func TestAdvanceScenario(t *testing.T) {
	s := mustNew(t, Pos(2, 2), 5)

	s.Advance(true)
	if s.Head() != Pos(2, 3) {
		t.Fatalf("after first advance head = %s, expected (2,3)", s.Head())
	}
	if s.Len() != 1 {
		t.Fatalf("length changed to %d", s.Len())
	}

	s.TurnLeft()
	s.Advance(true)
	if s.Direction() != Left {
		t.Fatalf("direction = %s, expected left", s.Direction())
	}
	if s.Head() != Pos(1, 3) {
		t.Fatalf("after turn head = %s, expected (1,3)", s.Head())
	}
}

func TestAdvanceWraparound(t *testing.T) {
	tests := []struct {
		name  string
		start GridPosition
		turn  func(*Snake)
		end   GridPosition
	}{
		{"right edge", Pos(4, 2), (*Snake).TurnRight, Pos(0, 2)},
		{"left edge", Pos(0, 2), (*Snake).TurnLeft, Pos(4, 2)},
		{"top edge", Pos(1, 4), nil, Pos(1, 0)},
		{"bottom edge", Pos(3, 0), func(s *Snake) { s.TurnLeft(); s.TurnLeft() }, Pos(3, 4)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := mustNew(t, test.start, 1)
			if test.turn != nil {
				test.turn(s)
			}
			s.Advance(true)
			if s.Head() != test.end {
				t.Fatalf("head = %s, expected %s", s.Head(), test.end)
			}
		})
	}
}

func TestAdvanceStaysOnGrid(t *testing.T) {
	for x := int8(0); x < Dim; x++ {
		for y := int8(0); y < Dim; y++ {
			for _, d := range allDirections {
				s := mustNew(t, Pos(x, y), 1)
				for s.Direction() != d {
					s.TurnRight()
				}
				// A full lap visits every cell on the row or column.
				for i := 0; i < Dim+1; i++ {
					s.Advance(true)
					if !s.Head().InBounds() {
						t.Fatalf("head left the grid at %s heading %s", s.Head(), d)
					}
				}
				if d == Up || d == Down {
					if s.Head().X != x {
						t.Fatalf("vertical move changed x: %s", s.Head())
					}
				} else if s.Head().Y != y {
					t.Fatalf("horizontal move changed y: %s", s.Head())
				}
			}
		}
	}
}

func TestTurnsCounted(t *testing.T) {
	s := mustNew(t, Pos(2, 2), 5)
	s.TurnLeft()
	s.TurnLeft()
	s.TurnRight()

	if s.Turns() != 3 {
		t.Fatalf("turns = %d, expected 3", s.Turns())
	}
	// Only the resulting direction matters for the next move.
	if s.Direction() != Left {
		t.Fatalf("direction = %s, expected left", s.Direction())
	}
	if s.Head() != Pos(2, 2) {
		t.Fatalf("turning moved the snake to %s", s.Head())
	}
}

func TestGrowShiftsBody(t *testing.T) {
	s := mustNew(t, Pos(2, 2), 5)

	if err := s.Grow(); err != nil {
		t.Fatal(err)
	}
	if err := s.Grow(); err != nil {
		t.Fatal(err)
	}

	expect := []GridPosition{Pos(2, 4), Pos(2, 3), Pos(2, 2)}
	assertSegments(t, s, expect)

	s.TurnRight()
	s.Advance(true)

	expect = []GridPosition{Pos(3, 4), Pos(2, 4), Pos(2, 3)}
	assertSegments(t, s, expect)
}

func TestAdvancePreservesLength(t *testing.T) {
	s := mustNew(t, Pos(0, 0), 4)
	for i := 0; i < 3; i++ {
		if err := s.Grow(); err != nil {
			t.Fatal(err)
		}
	}

	before := append([]GridPosition(nil), s.Segments()...)
	s.Advance(true)

	if s.Len() != 4 {
		t.Fatalf("length = %d, expected 4", s.Len())
	}
	for i := 1; i < s.Len(); i++ {
		if s.Segment(i) != before[i-1] {
			t.Errorf("segment %d = %s, expected %s", i, s.Segment(i), before[i-1])
		}
	}
}

func TestGrowCapacityExceeded(t *testing.T) {
	s := mustNew(t, Pos(2, 2), 2)

	if err := s.Grow(); err != nil {
		t.Fatalf("first grow failed: %v", err)
	}

	before := append([]GridPosition(nil), s.Segments()...)
	if err := s.Grow(); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	if s.Len() != 2 {
		t.Fatalf("length = %d after failed grow", s.Len())
	}
	assertSegments(t, s, before)
}

func TestAdvanceFullCapacity(t *testing.T) {
	s := mustNew(t, Pos(0, 0), Capacity)
	for s.Len() < Capacity {
		if err := s.Grow(); err != nil {
			t.Fatal(err)
		}
	}

	head := s.Head()
	s.Advance(false)

	if s.Len() != Capacity {
		t.Fatalf("length = %d", s.Len())
	}
	if s.Segment(1) != head {
		t.Fatalf("segment 1 = %s, expected %s", s.Segment(1), head)
	}
}

func assertSegments(t *testing.T, s *Snake, expect []GridPosition) {
	t.Helper()

	if s.Len() != len(expect) {
		t.Fatalf("length = %d, expected %d", s.Len(), len(expect))
	}
	for i, p := range s.Segments() {
		if p != expect[i] {
			t.Errorf("segment %d = %s, expected %s", i, p, expect[i])
		}
	}
}
