//go:build rp2040

package main

import (
	"blinky/core"
	"machine"
)

const buttonPin = machine.GP15

// pinButton is the start/stop button. GPIO interrupts on the RP2040 share
// IO_IRQ_BANK0, but TinyGo already demultiplexes them per pin and
// acknowledges the hardware flag, so the pending flag is latched here.
type pinButton struct {
	pin      machine.Pin
	pending  bool
	dispatch func()
}

var picoButton pinButton

func (b *pinButton) configure(edge core.Edge) {
	b.pin = buttonPin
	b.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	change := machine.PinFalling
	if edge == core.EdgeRising {
		change = machine.PinRising
	}
	err := b.pin.SetInterrupt(change, func(machine.Pin) {
		b.pending = true
		// Edges before the handler is installed stay latched
		if b.dispatch != nil {
			b.dispatch()
		}
	})
	if err != nil {
		panic(err)
	}
}

func (b *pinButton) IsInterruptPending() bool {
	return b.pending
}

func (b *pinButton) ClearInterrupt() {
	b.pending = false
}
