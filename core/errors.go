package core

import "errors"

var (
	// ErrPeripheralsTaken is returned when the board has already been claimed
	ErrPeripheralsTaken = errors.New("peripherals already taken")

	// ErrClockLimit is the root of every clock configuration fault
	ErrClockLimit = errors.New("clock exceeds hardware limit")

	// ErrNotInstalled means a handler found a shared cell still empty
	ErrNotInstalled = errors.New("shared state not installed")

	// ErrForgedCriticalSection means Borrow was handed a token WithCritical did not create
	ErrForgedCriticalSection = errors.New("critical section token not issued by WithCritical")
)

// FaultError is the panic value raised when a handler runs before
// initialization has installed the cell it needs
type FaultError struct {
	Cell string
}

func (e *FaultError) Error() string {
	return e.Cell + ": " + ErrNotInstalled.Error()
}

func (e *FaultError) Unwrap() error {
	return ErrNotInstalled
}

// PeripheralGuard enforces that a board is claimed exactly once.
// Board implementations embed it.
type PeripheralGuard struct {
	taken uint32
}

// Take claims the peripherals
func (g *PeripheralGuard) Take() error {
	taken := false
	WithCritical(func(cs CriticalSection) {
		taken = g.taken != 0
		g.taken = 1
	})
	if taken {
		return ErrPeripheralsTaken
	}
	return nil
}
