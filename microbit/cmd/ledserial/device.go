package main

import (
	"fmt"
	"machine"
	"time"

	"libdb.so/ledsnake/ledserial"
	"libdb.so/ledsnake/microbit"
	"libdb.so/ledsnake/screen"
)

// maxReadFailures is the number of consecutive failed reads after which the
// device gives up.
const maxReadFailures = 16

// Device stores the current state of the device.
type Device struct {
	serial  SerialReadWriter
	matrix  *microbit.Matrix
	buttonA microbit.Button
	buttonB microbit.Button

	numLEDs   int
	ledBuffer []byte
	grid      screen.Grid
	pressed   ledserial.ButtonState
}

// NewDevice creates a new device.
func NewDevice(serial machine.Serialer, matrix *microbit.Matrix, a, b microbit.Button) *Device {
	d := &Device{
		serial:  WrapSerial(serial),
		matrix:  matrix,
		buttonA: a,
		buttonB: b,
	}
	matrix.OnScan = d.sampleButtons
	return d
}

// Run runs the device loop forever.
func (d *Device) Run() {
	var failures int
	for {
		p, err := d.readPacket()
		if err != nil {
			failures++
			if failures >= maxReadFailures {
				d.panic(err)
			}
			d.logError(err)
			continue
		}
		failures = 0

		d.log(fmt.Sprintf("received packet: %s", p.Type()))

		if err := d.handlePacket(p); err != nil {
			d.logError(err)
		}
	}
}

func (d *Device) panic(err error) {
	d.sendPacket(ledserial.PanicPacket{Message: err.Error()})
	d.matrix.Clear()
	for {
		time.Sleep(time.Hour)
	}
}

func (d *Device) log(msg string) {
	d.sendPacket(ledserial.LogPacket{Message: msg})
}

func (d *Device) logError(err error) {
	d.sendPacket(ledserial.ErrorPacket{Message: err.Error()})
}

func (d *Device) sendPacket(p ledserial.OutgoingPacket) {
	ledserial.WriteOutgoingPacket(d.serial, p)
}

func (d *Device) readPacket() (ledserial.IncomingPacket, error) {
	return ledserial.ReadIncomingPacket(d.serial, ledserial.ReadContext{
		NumLEDs:   d.numLEDs,
		LEDBuffer: d.ledBuffer,
	})
}

func (d *Device) sampleButtons() {
	if d.buttonA.Pressed() {
		d.pressed |= ledserial.ButtonA
	}
	if d.buttonB.Pressed() {
		d.pressed |= ledserial.ButtonB
	}
}

func (d *Device) handlePacket(p ledserial.IncomingPacket) error {
	switch p := p.(type) {
	case ledserial.InitializePacket:
		if p.Width != screen.Dim || p.Height != screen.Dim {
			return fmt.Errorf("unsupported matrix size %dx%d", p.Width, p.Height)
		}
		d.numLEDs = int(p.Width) * int(p.Height)
		d.ledBuffer = make([]byte, d.numLEDs)
		d.matrix.Clear()

	case ledserial.ClearPacket:
		d.matrix.Clear()

	case ledserial.FramePacket:
		if d.numLEDs == 0 {
			return fmt.Errorf("frame received before initialization")
		}
		d.grid.SetPixels(p.Pix)
		d.matrix.Render(d.grid, time.Duration(p.DurationMs)*time.Millisecond)

		// Report presses seen while the frame was shown.
		d.sendPacket(ledserial.ButtonsPacket{State: d.pressed})
		d.pressed = 0

	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	d.sendPacket(ledserial.AckPacket{
		IncomingPacketType: p.Type(),
	})
	return nil
}
