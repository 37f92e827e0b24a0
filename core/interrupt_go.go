//go:build !tinygo

package core

import (
	"sync"
	"sync/atomic"
)

// State is a placeholder for interrupt state on regular Go
type State uintptr

var (
	// irqLock stands in for the global interrupt mask on a host build.
	// Goroutines acting as interrupt sources serialize on it.
	irqLock    sync.Mutex
	irqMasked  atomic.Bool
	unmaskHook atomic.Pointer[func()]
)

// disableInterrupts masks the simulated interrupt line for the calling goroutine
func disableInterrupts() State {
	irqLock.Lock()
	irqMasked.Store(true)
	return 1
}

// restoreInterrupts unmasks and gives the unmask hook a chance to deliver
// anything that was raised while masked
func restoreInterrupts(state State) {
	irqMasked.Store(false)
	irqLock.Unlock()

	if hook := unmaskHook.Load(); hook != nil {
		(*hook)()
	}
}

// InterruptsMasked reports whether a critical section is currently held.
func InterruptsMasked() bool {
	return irqMasked.Load()
}

// SetUnmaskHook registers fn to run every time a critical section ends.
// Host-side interrupt controllers use it to deliver deferred interrupts.
// Passing nil removes the hook.
func SetUnmaskHook(fn func()) {
	if fn == nil {
		unmaskHook.Store(nil)
		return
	}
	unmaskHook.Store(&fn)
}
