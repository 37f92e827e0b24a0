package core

import "time"

// TogglePeriod is the interval between LED toggles while the blinker is active
const TogglePeriod = 1000 * time.Millisecond

// Edge selects which transition of an input raises its interrupt
type Edge uint8

const (
	EdgeRising Edge = iota + 1
	EdgeFalling
)

// OutputPin is a push-pull digital output (the LED).
// Implementations are only touched from inside a critical section.
type OutputPin interface {
	// SetHigh drives the pin high
	SetHigh()

	// SetLow drives the pin low
	SetLow()

	// Toggle flips the driven level
	Toggle()

	// IsSetHigh reports the level currently being driven
	IsSetHigh() bool
}

// InputPin is an edge-detecting digital input (the button).
// The interrupt line it raises may be shared with other pins, so a handler
// has to ask whether this pin is really the pending source.
type InputPin interface {
	// IsInterruptPending reports the latched pending flag for this pin
	IsInterruptPending() bool

	// ClearInterrupt acknowledges the pending flag
	ClearInterrupt()
}

// PeriodicTimer is a reload timer raising an update event every period
type PeriodicTimer interface {
	// Start (re)starts counting from zero with the given period
	Start(period time.Duration)

	// Stop halts counting. An update event latched before the stop is discarded.
	Stop()

	// ClearUpdate acknowledges the pending update event
	ClearUpdate()

	// IsRunning reports whether the counter is enabled
	IsRunning() bool
}

// Board is the hardware-abstraction collaborator the init routine drives.
// Target-specific code (or the host simulator) implements it.
type Board interface {
	// Take claims the peripherals. A second call returns ErrPeripheralsTaken.
	Take() error

	// ClockLimits returns the maximum bus frequencies the part supports
	ClockLimits() ClockLimits

	// ConfigureClocks applies the requested clock tree and returns the frozen result
	ConfigureClocks(req ClockConfig) (Clocks, error)

	// ConfigureLED configures the LED pin as a push-pull output driven low
	ConfigureLED() OutputPin

	// ConfigureButton configures the button for edge detection, registers it
	// as an interrupt source and enables its line
	ConfigureButton(edge Edge) InputPin

	// ConfigureTimer configures the periodic timer with its update interrupt
	// enabled, without starting it
	ConfigureTimer() PeriodicTimer

	// UnmaskInterrupts installs the handlers and unmasks both lines at the
	// interrupt controller
	UnmaskInterrupts(onButton, onTimer func())

	// WaitForInterrupt sleeps until an interrupt has been serviced.
	// It returns false only when the board has been powered off.
	WaitForInterrupt() bool
}
