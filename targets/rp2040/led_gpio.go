//go:build rp2040 && !ws2812

package main

import "machine"

// pinLED drives the on-board LED on GP25
type pinLED struct {
	pin  machine.Pin
	high bool
}

func newStatusLED() *pinLED {
	led := &pinLED{pin: machine.LED}
	led.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.SetLow()
	return led
}

func (l *pinLED) SetHigh() {
	l.high = true
	l.pin.High()
}

func (l *pinLED) SetLow() {
	l.high = false
	l.pin.Low()
}

func (l *pinLED) Toggle() {
	if l.high {
		l.SetLow()
	} else {
		l.SetHigh()
	}
}

func (l *pinLED) IsSetHigh() bool {
	return l.high
}
