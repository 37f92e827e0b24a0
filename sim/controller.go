//go:build !tinygo

// Package sim is a host-side model of a microcontroller board: a
// millisecond clock, an interrupt controller, GPIO with a shared external
// interrupt line, and a reload timer. It implements core.Board so the real
// handlers can be exercised without hardware.
package sim

import (
	"sync"

	"golang.org/x/exp/slices"

	"blinky/core"
)

// IRQ is an interrupt number; lower numbers win when several are pending
type IRQ uint16

// Controller models a nested vectored interrupt controller.
// A raised line stays pending until it is unmasked and no critical
// section is held, then its handler runs exactly once.
type Controller struct {
	mu       sync.Mutex
	handlers map[IRQ]func()
	unmasked map[IRQ]bool
	pending  map[IRQ]bool
	serviced map[IRQ]uint64

	wake chan struct{}
}

// NewController creates a controller and hooks it to the end of every
// critical section so deferred interrupts get delivered
func NewController() *Controller {
	c := &Controller{
		handlers: make(map[IRQ]func()),
		unmasked: make(map[IRQ]bool),
		pending:  make(map[IRQ]bool),
		serviced: make(map[IRQ]uint64),
		wake:     make(chan struct{}, 1),
	}
	core.SetUnmaskHook(c.Service)
	return c
}

// Install sets the handler for irq
func (c *Controller) Install(irq IRQ, handler func()) {
	c.mu.Lock()
	c.handlers[irq] = handler
	c.mu.Unlock()
}

// Unmask enables delivery of irq and services anything already pending
func (c *Controller) Unmask(irq IRQ) {
	c.mu.Lock()
	c.unmasked[irq] = true
	c.mu.Unlock()
	c.Service()
}

// Mask disables delivery of irq; raises are still latched
func (c *Controller) Mask(irq IRQ) {
	c.mu.Lock()
	c.unmasked[irq] = false
	c.mu.Unlock()
}

// IsUnmasked reports whether irq is enabled
func (c *Controller) IsUnmasked(irq IRQ) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unmasked[irq]
}

// Raise latches irq as pending and delivers it if possible
func (c *Controller) Raise(irq IRQ) {
	c.mu.Lock()
	c.pending[irq] = true
	c.mu.Unlock()
	c.Service()
}

// Unpend clears a latched irq without running its handler
func (c *Controller) Unpend(irq IRQ) {
	c.mu.Lock()
	delete(c.pending, irq)
	c.mu.Unlock()
}

// IsPending reports whether irq is latched and not yet serviced
func (c *Controller) IsPending(irq IRQ) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[irq]
}

// Serviced returns how many times the handler for irq has run
func (c *Controller) Serviced(irq IRQ) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serviced[irq]
}

// Service runs the handlers of all deliverable pending lines, highest
// priority first. It does nothing while a critical section is held; the
// unmask hook calls it again on release.
func (c *Controller) Service() {
	for {
		if core.InterruptsMasked() {
			return
		}

		c.mu.Lock()
		irq, handler, ok := c.nextLocked()
		if ok {
			delete(c.pending, irq)
			c.serviced[irq]++
		}
		c.mu.Unlock()

		if !ok {
			return
		}

		handler()

		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
}

func (c *Controller) nextLocked() (IRQ, func(), bool) {
	var ready []IRQ
	for irq := range c.pending {
		if c.unmasked[irq] && c.handlers[irq] != nil {
			ready = append(ready, irq)
		}
	}
	if len(ready) == 0 {
		return 0, nil, false
	}
	slices.Sort(ready)
	return ready[0], c.handlers[ready[0]], true
}

// Wait blocks until a handler has run or off is closed.
// It returns false when off is closed.
func (c *Controller) Wait(off <-chan struct{}) bool {
	select {
	case <-c.wake:
		return true
	case <-off:
		return false
	}
}

// Detach stops delivering deferred interrupts
func (c *Controller) Detach() {
	core.SetUnmaskHook(nil)
}
