// Command ledserial turns the micro:bit into a display for the ledsnake host
// program, speaking the ledserial protocol over USB serial.
package main

import (
	"machine"

	"libdb.so/ledsnake/microbit"
)

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: 115200})

	d := NewDevice(machine.Serial, microbit.NewMatrix(), microbit.ButtonA(), microbit.ButtonB())
	d.Run()
}
