// Package termsim simulates the LED matrix and its two buttons in a terminal.
package termsim

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"libdb.so/ledsnake"
	"libdb.so/ledsnake/screen"
)

// ErrQuit is returned by Run when the user quits the simulator.
var ErrQuit = errors.New("simulator quit")

// Keys maps keyboard keys to the board's buttons.
type Keys struct {
	Left  rune // button A
	Right rune // button B
}

const (
	cellWidth = 2
	originX   = 2
	originY   = 1
)

var (
	litStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	unlitStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	helpStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// Simulator draws frames onto a tcell screen and turns key presses into
// button presses. Presses are latched until polled.
type Simulator struct {
	screen tcell.Screen
	keys   Keys

	mu      sync.Mutex
	pressed [2]bool
}

var (
	_ screen.Sink          = (*Simulator)(nil)
	_ ledsnake.InputSource = (*Simulator)(nil)
)

// New creates a new simulator on the given screen. The screen is initialized
// here and finalized when Run returns.
func New(s tcell.Screen, keys Keys) (*Simulator, error) {
	if err := s.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize terminal")
	}
	s.Clear()

	return &Simulator{
		screen: s,
		keys:   keys,
	}, nil
}

// Run handles terminal events until the context is canceled or the user
// quits with Escape or Ctrl-C.
func (s *Simulator) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				// Screen was finalized.
				return
			}
			events <- ev
		}
	}()
	defer s.screen.Fini()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			if !s.handleEvent(ev) {
				return ErrQuit
			}
		}
	}
}

// handleEvent handles a single event. It returns false if the simulator
// should stop.
func (s *Simulator) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case s.keys.Left:
				s.press(ledsnake.ButtonA)
			case s.keys.Right:
				s.press(ledsnake.ButtonB)
			}
		}
	case *tcell.EventResize:
		s.screen.Sync()
	}
	return true
}

func (s *Simulator) press(b ledsnake.Button) {
	s.mu.Lock()
	s.pressed[b] = true
	s.mu.Unlock()
}

// Pressed reports whether the button's key was pressed since the last poll.
func (s *Simulator) Pressed(b ledsnake.Button) (bool, error) {
	if int(b) >= len(s.pressed) {
		return false, errors.Errorf("unknown button %s", b)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pressed := s.pressed[b]
	s.pressed[b] = false
	return pressed, nil
}

// Render draws the grid and holds it for the given duration. Row 0 of the
// grid is drawn at the top.
func (s *Simulator) Render(grid screen.Grid, d time.Duration) {
	for y := 0; y < screen.Dim; y++ {
		for x := 0; x < screen.Dim; x++ {
			r, style := '·', unlitStyle
			if grid.At(x, y) != 0 {
				r, style = '●', litStyle
			}
			s.screen.SetContent(originX+x*cellWidth, originY+y, r, nil, style)
		}
	}

	help := "[" + string(s.keys.Left) + "] left  [" + string(s.keys.Right) + "] right  [esc] quit"
	for i, r := range []rune(help) {
		s.screen.SetContent(originX+i, originY+screen.Dim+1, r, nil, helpStyle)
	}

	s.screen.Show()
	time.Sleep(d)
}
