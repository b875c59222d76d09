// Command snake plays snake on the micro:bit without a host. Button A turns
// left, button B turns right.
package main

import (
	"time"

	"libdb.so/ledsnake/microbit"
	"libdb.so/ledsnake/screen"
	"libdb.so/ledsnake/snake"
)

const (
	interval  = 100 * time.Millisecond
	maxLength = 5
)

func main() {
	matrix := microbit.NewMatrix()
	buttonA := microbit.ButtonA()
	buttonB := microbit.ButtonB()

	s, err := snake.New(snake.Pos(2, 2), maxLength)
	if err != nil {
		panic(err.Error())
	}
	scr := screen.New(matrix, interval)

	for {
		if buttonA.Pressed() {
			s.TurnLeft()
		}
		if buttonB.Pressed() {
			s.TurnRight()
		}
		s.Advance(true)
		scr.Update(s)
	}
}
