package ledsnake

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"libdb.so/ledsnake/ledserial"
	"libdb.so/ledsnake/screen"
	"libdb.so/ledsnake/snake"
)

// fakeBoard emulates the ledserial firmware on the other end of a pipe.
type fakeBoard struct {
	conn    net.Conn
	frames  chan ledserial.FramePacket
	buttons []ledserial.ButtonState
	panicOn int
}

func (b *fakeBoard) run(t *testing.T) {
	var numLEDs int
	var nframes int

	for {
		p, err := ledserial.ReadIncomingPacket(b.conn, ledserial.ReadContext{NumLEDs: numLEDs})
		if err != nil {
			return
		}

		switch p := p.(type) {
		case ledserial.InitializePacket:
			numLEDs = int(p.Width) * int(p.Height)

		case ledserial.FramePacket:
			nframes++
			if nframes == b.panicOn {
				b.send(t, ledserial.PanicPacket{Message: "out of memory"})
				return
			}

			frame := p
			frame.Pix = append([]uint8(nil), p.Pix...)
			b.frames <- frame

			if len(b.buttons) > 0 {
				b.send(t, ledserial.ButtonsPacket{State: b.buttons[0]})
				b.buttons = b.buttons[1:]
			}
		}

		b.send(t, ledserial.AckPacket{IncomingPacketType: p.Type()})
	}
}

func (b *fakeBoard) send(t *testing.T, p ledserial.OutgoingPacket) {
	if err := ledserial.WriteOutgoingPacket(b.conn, p); err != nil {
		t.Errorf("board failed to send %s: %v", p.Type(), err)
	}
}

func startSerialDisplay(t *testing.T, board *fakeBoard) (*SerialDisplay, <-chan error) {
	t.Helper()

	host, device := net.Pipe()
	t.Cleanup(func() { device.Close() })

	board.conn = device
	board.frames = make(chan ledserial.FramePacket, 16)
	go board.run(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	display := NewSerialDisplay(host, time.Second, discardLogger)

	done := make(chan error, 1)
	go func() { done <- display.Run(ctx) }()

	if err := display.Initialize(ctx); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}

	return display, done
}

func TestSerialDisplayRender(t *testing.T) {
	board := &fakeBoard{
		buttons: []ledserial.ButtonState{ledserial.ButtonA, 0},
	}
	display, _ := startSerialDisplay(t, board)

	var grid screen.Grid
	grid.Set(snake.Pos(2, 3))

	display.Render(grid, 20*time.Millisecond)

	frame := <-board.frames
	if frame.DurationMs != 20 {
		t.Errorf("duration = %dms, expected 20ms", frame.DurationMs)
	}
	var got screen.Grid
	got.SetPixels(frame.Pix)
	if got != grid {
		t.Errorf("board received %v, expected %v", got, grid)
	}

	// The buttons packet is handled before the ack that unblocked Render.
	if pressed, _ := display.Pressed(ButtonA); !pressed {
		t.Error("button A press was not reported")
	}
	if pressed, _ := display.Pressed(ButtonA); pressed {
		t.Error("button A press was reported twice")
	}
	if pressed, _ := display.Pressed(ButtonB); pressed {
		t.Error("button B reported without being pressed")
	}
}

func TestSerialDisplayGame(t *testing.T) {
	board := &fakeBoard{
		buttons: []ledserial.ButtonState{0, ledserial.ButtonB, 0},
	}
	display, _ := startSerialDisplay(t, board)

	cfg := DefaultConfig()
	cfg.Interval = Duration(time.Millisecond)

	g, err := NewGame(cfg, display, display, discardLogger)
	if err != nil {
		t.Fatal(err)
	}

	// Buttons reported with a frame are applied on the following tick.
	for i := 0; i < 3; i++ {
		g.Tick()
	}

	if g.Snake().Direction() != snake.Right {
		t.Fatalf("direction = %s, expected right", g.Snake().Direction())
	}
	if g.Snake().Head() != snake.Pos(3, 4) {
		t.Fatalf("head = %s, expected (3,4)", g.Snake().Head())
	}
}

func TestSerialDisplayPanic(t *testing.T) {
	board := &fakeBoard{panicOn: 1}
	display, done := startSerialDisplay(t, board)

	display.Render(screen.Grid{}, time.Millisecond)

	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "out of memory") {
			t.Fatalf("unexpected error %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("display did not stop after the board panicked")
	}
}
