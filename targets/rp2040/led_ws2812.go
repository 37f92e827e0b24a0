//go:build rp2040 && ws2812

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// Boards such as the RP2040-Zero have an addressable RGB LED on GP16
// instead of a plain one
const ws2812Pin = machine.GP16

var (
	pixelOn  = color.RGBA{R: 0x00, G: 0x40, B: 0x00, A: 0xFF}
	pixelOff = color.RGBA{}
)

// pixelLED treats a single WS2812 as a binary output
type pixelLED struct {
	dev  ws2812.Device
	high bool
}

func newStatusLED() *pixelLED {
	ws2812Pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led := &pixelLED{dev: ws2812.New(ws2812Pin)}
	led.SetLow()
	return led
}

func (l *pixelLED) write() {
	c := pixelOff
	if l.high {
		c = pixelOn
	}
	// A failed write leaves the old colour; the next toggle retries
	_ = l.dev.WriteColors([]color.RGBA{c})
}

func (l *pixelLED) SetHigh() {
	l.high = true
	l.write()
}

func (l *pixelLED) SetLow() {
	l.high = false
	l.write()
}

func (l *pixelLED) Toggle() {
	l.high = !l.high
	l.write()
}

func (l *pixelLED) IsSetHigh() bool {
	return l.high
}
