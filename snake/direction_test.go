package snake

import "testing"

var allDirections = []Direction{Up, Right, Down, Left}

func TestDirectionTurnCycle(t *testing.T) {
	for _, d := range allDirections {
		left := d
		right := d
		for i := 0; i < 4; i++ {
			left = left.Left()
			right = right.Right()
		}
		if left != d {
			t.Errorf("four left turns from %s ended at %s", d, left)
		}
		if right != d {
			t.Errorf("four right turns from %s ended at %s", d, right)
		}
		if got := d.Left().Right(); got != d {
			t.Errorf("left then right from %s ended at %s", d, got)
		}
		if got := d.Right().Left(); got != d {
			t.Errorf("right then left from %s ended at %s", d, got)
		}
	}
}

func TestDirectionLeftMapping(t *testing.T) {
	tests := []struct {
		from, left, right Direction
	}{
		{Up, Left, Right},
		{Left, Down, Up},
		{Down, Right, Left},
		{Right, Up, Down},
	}

	for _, test := range tests {
		if got := test.from.Left(); got != test.left {
			t.Errorf("%s.Left() = %s, expected %s", test.from, got, test.left)
		}
		if got := test.from.Right(); got != test.right {
			t.Errorf("%s.Right() = %s, expected %s", test.from, got, test.right)
		}
	}
}

func TestDirectionDelta(t *testing.T) {
	tests := []struct {
		dir    Direction
		dx, dy int8
	}{
		{Up, 0, 1},
		{Down, 0, -1},
		{Left, -1, 0},
		{Right, 1, 0},
	}

	for _, test := range tests {
		dx, dy := test.dir.Delta()
		if dx != test.dx || dy != test.dy {
			t.Errorf("%s.Delta() = (%d,%d), expected (%d,%d)", test.dir, dx, dy, test.dx, test.dy)
		}
	}
}

func TestDirectionString(t *testing.T) {
	if s := Direction(9).String(); s != "Direction(9)" {
		t.Errorf("unexpected string for invalid direction: %q", s)
	}
}
