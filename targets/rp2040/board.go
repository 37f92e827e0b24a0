//go:build rp2040

package main

import (
	"blinky/core"
	"device/arm"
)

// PicoBoard implements core.Board for a Raspberry Pi Pico
type PicoBoard struct {
	core.PeripheralGuard
}

// NewPicoBoard creates the board. Nothing is touched until core.Init runs.
func NewPicoBoard() *PicoBoard {
	return &PicoBoard{}
}

func (b *PicoBoard) ClockLimits() core.ClockLimits {
	return core.ClockLimits{
		SysClk: 133 * core.MHz,
		PCLK1:  133 * core.MHz,
		PCLK2:  133 * core.MHz,
	}
}

func (b *PicoBoard) ConfigureClocks(req core.ClockConfig) (core.Clocks, error) {
	return configureClocks(req)
}

func (b *PicoBoard) ConfigureLED() core.OutputPin {
	return newStatusLED()
}

func (b *PicoBoard) ConfigureButton(edge core.Edge) core.InputPin {
	picoButton.configure(edge)
	return &picoButton
}

func (b *PicoBoard) ConfigureTimer() core.PeriodicTimer {
	picoTimer.configure()
	return &picoTimer
}

func (b *PicoBoard) UnmaskInterrupts(onButton, onTimer func()) {
	picoTimer.onUpdate = onTimer
	picoTimer.intr.Enable()

	state := interruptDisable()
	picoButton.dispatch = onButton
	latched := picoButton.pending
	interruptRestore(state)

	// An edge that arrived during setup is delivered now
	if latched {
		onButton()
	}
}

func (b *PicoBoard) WaitForInterrupt() bool {
	arm.Asm("wfi")
	UpdateSystemTime()
	return true
}
