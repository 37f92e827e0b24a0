//go:build rp2040

package main

import (
	"blinky/core"
	"machine"
)

func main() {
	// The board idles in wfi between presses, so the watchdog stays off
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitDebug()
	InitTraceUART()
	core.SetTraceSink(sendTrace)

	board := NewPicoBoard()
	core.Run(board, clockRequest())
}
