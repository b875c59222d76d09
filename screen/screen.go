// Package screen rasterizes the snake into a binary LED grid and hands it to
// a display.
package screen

import (
	"io"
	"time"

	"libdb.so/ledsnake/snake"
)

// Dim is the width and height of the LED matrix.
const Dim = snake.Dim

// Grid is a frame for the LED matrix, indexed [y][x]. Each cell is either 0
// (off) or 1 (on).
type Grid [Dim][Dim]uint8

// Clear turns every cell off.
func (g *Grid) Clear() {
	*g = Grid{}
}

// Set turns on the cell at the given position.
func (g *Grid) Set(p snake.GridPosition) {
	g[p.Y][p.X] = 1
}

// At returns the value of the cell at (x, y).
func (g *Grid) At(x, y int) uint8 {
	return g[y][x]
}

// Lit returns the number of cells that are on.
func (g *Grid) Lit() int {
	var n int
	for _, row := range g {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// Pixels returns the grid as a row-major slice of Dim*Dim values.
func (g *Grid) Pixels() []uint8 {
	pix := make([]uint8, 0, Dim*Dim)
	for _, row := range g {
		pix = append(pix, row[:]...)
	}
	return pix
}

// SetPixels fills the grid from a row-major slice. It stops when either the
// grid or pix is exhausted and returns the number of cells written.
func (g *Grid) SetPixels(pix []uint8) int {
	n := len(pix)
	if n > Dim*Dim {
		n = Dim * Dim
	}
	for i := 0; i < n; i++ {
		g[i/Dim][i%Dim] = pix[i]
	}
	return n
}

// WriteTo implements io.WriterTo. It writes the grid row by row, one byte per
// cell.
func (g *Grid) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, row := range g {
		n, err := w.Write(row[:])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// Sink is the display the grid is rendered onto.
type Sink interface {
	// Render shows the grid for the given duration. It blocks until the
	// duration has passed.
	Render(grid Grid, d time.Duration)
}

// SinkFunc is a function that implements Sink.
type SinkFunc func(grid Grid, d time.Duration)

// Render calls f.
func (f SinkFunc) Render(grid Grid, d time.Duration) { f(grid, d) }

// Screen holds the last rendered frame and forwards every new frame to the
// sink.
type Screen struct {
	sink     Sink
	grid     Grid
	interval time.Duration
}

// New creates a new screen that renders onto sink, showing each frame for
// interval.
func New(sink Sink, interval time.Duration) *Screen {
	return &Screen{
		sink:     sink,
		interval: interval,
	}
}

// Update redraws the screen from the snake's live segments and renders it.
func (s *Screen) Update(sn *snake.Snake) {
	s.grid.Clear()
	for _, p := range sn.Segments() {
		s.grid.Set(p)
	}
	s.sink.Render(s.grid, s.interval)
}

// Grid returns the last rendered frame.
func (s *Screen) Grid() Grid { return s.grid }

// Interval returns the duration each frame is shown for.
func (s *Screen) Interval() time.Duration { return s.interval }
