package ledsnake

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
	"libdb.so/ledsnake/ledserial"
	"libdb.so/ledsnake/screen"
)

// SerialDisplay drives a board running the ledserial firmware. It is both the
// game's display and its input source: the board reports its buttons with
// every frame it shows.
type SerialDisplay struct {
	port       io.ReadWriteCloser
	logger     *slog.Logger
	ackTimeout time.Duration

	acks chan ledserial.AckPacket
	// fatal is closed when the board reports an unrecoverable error.
	fatal     chan struct{}
	fatalErr  error
	fatalOnce sync.Once

	writeMu sync.Mutex
	mu      sync.Mutex
	buttons ledserial.ButtonState
}

var (
	_ screen.Sink = (*SerialDisplay)(nil)
	_ InputSource = (*SerialDisplay)(nil)
)

// OpenSerialDisplay opens the configured serial device.
func OpenSerialDisplay(cfg SerialConfig, logger *slog.Logger) (*SerialDisplay, error) {
	port, err := serial.Open(cfg.Device, &serial.Mode{
		BaudRate: cfg.Baud,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open serial port")
	}

	if err := port.SetReadTimeout(serial.NoTimeout); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "failed to reset read timeout")
	}

	return NewSerialDisplay(port, time.Duration(cfg.AckTimeout), logger), nil
}

// NewSerialDisplay creates a display speaking to the board over port. The
// display takes ownership of the port.
func NewSerialDisplay(port io.ReadWriteCloser, ackTimeout time.Duration, logger *slog.Logger) *SerialDisplay {
	return &SerialDisplay{
		port:       port,
		logger:     logger,
		ackTimeout: ackTimeout,
		acks:       make(chan ledserial.AckPacket, 1),
		fatal:      make(chan struct{}),
	}
}

// Run reads packets from the board until the given context is canceled or
// the board fails. The port is closed when Run returns.
func (d *SerialDisplay) Run(ctx context.Context) error {
	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		select {
		case <-ctx.Done():
		case <-d.fatal:
		}
		d.logger.Debug("closing serial port")
		if err := d.port.Close(); err != nil {
			return errors.Wrap(err, "failed to close serial port")
		}
		return d.err(ctx)
	})
	errg.Go(func() error {
		return d.readPackets(ctx)
	})

	return errg.Wait()
}

// Initialize tells the board the size of the matrix and waits for it to be
// ready. Run must be running.
func (d *SerialDisplay) Initialize(ctx context.Context) error {
	d.logger.Debug("sending initialize packet")

	if err := d.writePacket(ledserial.InitializePacket{
		Width:  screen.Dim,
		Height: screen.Dim,
	}); err != nil {
		return errors.Wrap(err, "failed to initialize board")
	}

	ctx, cancel := context.WithTimeout(ctx, d.ackTimeout)
	defer cancel()

	if err := d.waitAck(ctx, ledserial.TypeInitializePacket); err != nil {
		return errors.Wrap(err, "board did not acknowledge initialization")
	}
	return nil
}

// Render sends the grid to the board and blocks until the board is done
// showing it. Failures are logged; the frame is dropped.
func (d *SerialDisplay) Render(grid screen.Grid, duration time.Duration) {
	if err := d.writePacket(ledserial.FramePacket{
		DurationMs: uint32(duration / time.Millisecond),
		Pix:        grid.Pixels(),
	}); err != nil {
		d.logger.Warn(
			"failed to write frame",
			"error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration+d.ackTimeout)
	defer cancel()

	if err := d.waitAck(ctx, ledserial.TypeFramePacket); err != nil {
		d.logger.Warn(
			"frame was not acknowledged",
			"error", err)
	}
}

// Pressed reports whether the button was pressed since the last time it was
// polled.
func (d *SerialDisplay) Pressed(b Button) (bool, error) {
	var mask ledserial.ButtonState
	switch b {
	case ButtonA:
		mask = ledserial.ButtonA
	case ButtonB:
		mask = ledserial.ButtonB
	default:
		return false, fmt.Errorf("unknown button %s", b)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pressed := d.buttons.Has(mask)
	d.buttons &^= mask
	return pressed, nil
}

func (d *SerialDisplay) waitAck(ctx context.Context, ptype ledserial.IncomingPacketType) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.fatal:
			return d.fatalErr
		case ack := <-d.acks:
			if ack.IncomingPacketType == ptype {
				return nil
			}
			// A late ack for an earlier packet that timed out.
			d.logger.Debug(
				"ignoring stale ack",
				"acked_for", ack.IncomingPacketType,
				"waiting_for", ptype)
		}
	}
}

func (d *SerialDisplay) fail(err error) {
	d.fatalOnce.Do(func() {
		d.fatalErr = err
		close(d.fatal)
	})
}

// err returns the board's failure if it failed, or the context's error.
func (d *SerialDisplay) err(ctx context.Context) error {
	select {
	case <-d.fatal:
		return d.fatalErr
	default:
		return ctx.Err()
	}
}

func (d *SerialDisplay) readPackets(ctx context.Context) error {
	for ctx.Err() == nil {
		p, err := ledserial.ReadOutgoingPacket(d.port)
		if err != nil {
			if err := d.err(ctx); err != nil {
				return err
			}
			// A short read indicates a timeout. This is expected.
			// Ignore the error and try again.
			if errors.Is(err, io.EOF) {
				continue
			}
			if errors.Is(err, ledserial.ErrChecksumMismatch) {
				d.logger.Warn("dropping corrupted packet from board")
				continue
			}
			return errors.Wrap(err, "failed to read packet")
		}

		d.handlePacket(p)
	}

	return ctx.Err()
}

func (d *SerialDisplay) handlePacket(p ledserial.OutgoingPacket) {
	d.logger.Debug("handling packet", "type", p.Type())

	switch p := p.(type) {
	case ledserial.AckPacket:
		select {
		case d.acks <- p:
		default:
			// Nobody is waiting and an older ack is already queued;
			// replace it.
			select {
			case <-d.acks:
			default:
			}
			d.acks <- p
		}

	case ledserial.ButtonsPacket:
		d.mu.Lock()
		d.buttons |= p.State
		d.mu.Unlock()

	case ledserial.ErrorPacket:
		d.logger.Warn(
			"received error packet from board",
			"message", p.Message)

	case ledserial.PanicPacket:
		d.logger.Error(
			"board unrecoverably panicked",
			"message", p.Message)
		d.fail(errors.Errorf("board panicked: %s", p.Message))

	case ledserial.LogPacket:
		d.logger.Info(
			"received log packet from board",
			"message", p.Message)
	}
}

func (d *SerialDisplay) writePacket(p ledserial.IncomingPacket) error {
	d.logger.Debug(
		"writing packet",
		"type", p.Type())

	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	return ledserial.WriteIncomingPacket(d.port, p)
}
