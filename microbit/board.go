// Package microbit drives the BBC micro:bit's 5x5 LED matrix and its two
// buttons.
package microbit

import (
	"image/color"
	"machine"
	"time"

	"libdb.so/ledsnake/screen"
	"tinygo.org/x/drivers/microbitmatrix"
)

var on = color.RGBA{255, 255, 255, 255}

// Matrix is the LED matrix. It implements screen.Sink.
type Matrix struct {
	dev microbitmatrix.Device
	// OnScan, if set, is called after every scan of the matrix while a frame
	// is shown.
	OnScan func()
}

var _ screen.Sink = (*Matrix)(nil)

// NewMatrix configures the LED matrix.
func NewMatrix() *Matrix {
	m := &Matrix{dev: microbitmatrix.New()}
	m.dev.Configure(microbitmatrix.Config{})
	m.Clear()
	return m
}

// Render shows the grid for the given duration. The matrix is multiplexed,
// so it is scanned repeatedly until the duration has passed.
func (m *Matrix) Render(grid screen.Grid, d time.Duration) {
	m.dev.ClearDisplay()
	for y := 0; y < screen.Dim; y++ {
		for x := 0; x < screen.Dim; x++ {
			if grid.At(x, y) != 0 {
				m.dev.SetPixel(int16(x), int16(y), on)
			}
		}
	}

	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		m.dev.Display()
		if m.OnScan != nil {
			m.OnScan()
		}
	}
}

// Clear turns every LED off.
func (m *Matrix) Clear() {
	m.dev.ClearDisplay()
	m.dev.DisableAll()
}

// Button is one of the board's push buttons. The buttons are active low.
type Button struct {
	pin machine.Pin
}

// ButtonA returns the left button.
func ButtonA() Button { return newButton(machine.BUTTONA) }

// ButtonB returns the right button.
func ButtonB() Button { return newButton(machine.BUTTONB) }

func newButton(pin machine.Pin) Button {
	pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	return Button{pin: pin}
}

// Pressed returns true while the button is held down.
func (b Button) Pressed() bool {
	return !b.pin.Get()
}
