// Package ledsnake runs a snake game on a 5x5 LED matrix with two buttons.
package ledsnake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"libdb.so/ledsnake/screen"
	"libdb.so/ledsnake/snake"
)

// Button is one of the two input buttons.
type Button uint8

const (
	// ButtonA turns the snake left.
	ButtonA Button = iota
	// ButtonB turns the snake right.
	ButtonB
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	default:
		return fmt.Sprintf("Button(%d)", b)
	}
}

// InputSource is the interface for types that report button state.
type InputSource interface {
	// Pressed returns whether the button is currently pressed. A failed read
	// is treated as not pressed by the game.
	Pressed(b Button) (bool, error)
}

// InputFunc is a function that implements InputSource.
type InputFunc func(b Button) (bool, error)

// Pressed calls f.
func (f InputFunc) Pressed(b Button) (bool, error) { return f(b) }

// Game is the snake game loop. It owns the snake and the screen; neither is
// touched outside of Tick.
type Game struct {
	cfg    *Config
	logger *slog.Logger
	input  InputSource
	trace  *TraceWriter

	snake  *snake.Snake
	screen *screen.Screen
	ticks  uint64
}

// GameOption is an option for NewGame.
type GameOption func(*Game)

// WithTrace makes the game write a record for every tick to t.
func WithTrace(t *TraceWriter) GameOption {
	return func(g *Game) { g.trace = t }
}

// NewGame creates a new game rendering onto sink and reading buttons from
// input.
func NewGame(cfg *Config, sink screen.Sink, input InputSource, logger *slog.Logger, opts ...GameOption) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	s, err := snake.New(cfg.Start.GridPosition(), cfg.MaxLength)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create snake")
	}

	g := &Game{
		cfg:    cfg,
		logger: logger,
		input:  input,
		snake:  s,
		screen: screen.New(sink, time.Duration(cfg.Interval)),
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Snake returns the game's snake. It must not be modified while the game is
// running.
func (g *Game) Snake() *snake.Snake { return g.snake }

// Screen returns the game's screen.
func (g *Game) Screen() *screen.Screen { return g.screen }

// Ticks returns the number of ticks run so far.
func (g *Game) Ticks() uint64 { return g.ticks }

// Tick runs a single step of the game: the buttons are polled, the snake is
// moved and the frame is rendered. It blocks for as long as the sink does.
func (g *Game) Tick() {
	pressedA := g.pressed(ButtonA)
	if pressedA {
		g.snake.TurnLeft()
	}

	pressedB := g.pressed(ButtonB)
	if pressedB {
		g.snake.TurnRight()
	}

	g.snake.Advance(true)
	g.screen.Update(g.snake)
	g.ticks++

	if g.trace != nil {
		grid := g.screen.Grid()
		head := g.snake.Head()

		err := g.trace.Write(TickRecord{
			Tick:      g.ticks,
			PressedA:  pressedA,
			PressedB:  pressedB,
			Direction: g.snake.Direction().String(),
			HeadX:     head.X,
			HeadY:     head.Y,
			Length:    g.snake.Len(),
			Turns:     g.snake.Turns(),
			LitCells:  grid.Lit(),
		})
		if err != nil {
			g.logger.Warn(
				"failed to write tick trace",
				"tick", g.ticks,
				"error", err)
		}
	}
}

func (g *Game) pressed(b Button) bool {
	pressed, err := g.input.Pressed(b)
	if err != nil {
		g.logger.Debug(
			"failed to read button, treating as not pressed",
			"button", b,
			"error", err)
		return false
	}
	return pressed
}

// Run runs the game until the given context is canceled. Cancellation is
// only checked between ticks, so a tick is never left half done.
func (g *Game) Run(ctx context.Context) error {
	g.logger.Debug(
		"starting game",
		"head", g.snake.Head(),
		"interval", g.screen.Interval(),
		"max_length", g.snake.MaxLen())

	for ctx.Err() == nil {
		g.Tick()
	}

	g.logger.Debug(
		"game stopped",
		"ticks", g.ticks,
		"turns", g.snake.Turns())

	return ctx.Err()
}
