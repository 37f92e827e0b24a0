//go:build !tinygo

package sim

import (
	"sync"
	"time"

	"blinky/core"
)

// Level change recorded on an output pin
type Level struct {
	At   time.Duration
	High bool
}

// LED is a simulated push-pull output that remembers its history
type LED struct {
	clock *Clock

	mu      sync.Mutex
	high    bool
	history []Level

	// OnWrite, when set, runs after every write while the caller still
	// holds whatever critical section it is in
	OnWrite func()
}

func newLED(clock *Clock) *LED {
	return &LED{clock: clock}
}

func (l *LED) set(high bool) {
	l.mu.Lock()
	if l.high != high {
		l.history = append(l.history, Level{At: l.clock.Now(), High: high})
	}
	l.high = high
	hook := l.OnWrite
	l.mu.Unlock()

	if hook != nil {
		hook()
	}
}

func (l *LED) SetHigh() {
	l.set(true)
}

func (l *LED) SetLow() {
	l.set(false)
}

func (l *LED) Toggle() {
	l.set(!l.IsSetHigh())
}

func (l *LED) IsSetHigh() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.high
}

// History returns every level change so far
func (l *LED) History() []Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Level(nil), l.history...)
}

// Changes returns the number of level changes so far
func (l *LED) Changes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.history)
}

// ExtiGroup is one external interrupt line shared by several pins, like
// EXTI15_10 serving pins 10 through 15 on an STM32
type ExtiGroup struct {
	Name string
	IRQ  IRQ

	ctrl *Controller
}

// NewExtiGroup creates a shared line raising irq on ctrl
func NewExtiGroup(name string, irq IRQ, ctrl *Controller) *ExtiGroup {
	return &ExtiGroup{Name: name, IRQ: irq, ctrl: ctrl}
}

// NewPin attaches an active-low input to the group
func (g *ExtiGroup) NewPin(name string, pin uint8) *Button {
	return &Button{Name: name, Pin: pin, group: g, level: true}
}

// Button is a simulated active-low input with edge detection.
// It implements core.InputPin.
type Button struct {
	Name string
	Pin  uint8

	group *ExtiGroup

	mu      sync.Mutex
	edge    core.Edge
	enabled bool
	pending bool
	level   bool // true while released

	// OnCheck, when set, runs each time a handler asks whether this pin is
	// pending, inside the handler's critical section
	OnCheck func()
}

// TriggerOnEdge selects the edge that latches the pending flag
func (b *Button) TriggerOnEdge(edge core.Edge) {
	b.mu.Lock()
	b.edge = edge
	b.mu.Unlock()
}

// EnableInterrupt lets edges raise the group's line
func (b *Button) EnableInterrupt() {
	b.mu.Lock()
	b.enabled = true
	b.mu.Unlock()
}

// Press drives the input low
func (b *Button) Press() {
	b.drive(false)
}

// Release lets the input float back high
func (b *Button) Release() {
	b.drive(true)
}

// Click is a clean press followed by a release
func (b *Button) Click() {
	b.Press()
	b.Release()
}

// Bounce simulates an unclean press: the contact opens and closes again
// extra times before settling low, then is released
func (b *Button) Bounce(extra int) {
	b.Press()
	for i := 0; i < extra; i++ {
		b.Release()
		b.Press()
	}
	b.Release()
}

func (b *Button) drive(high bool) {
	b.mu.Lock()
	if b.level == high {
		b.mu.Unlock()
		return
	}
	b.level = high

	falling := !high
	fire := b.enabled &&
		((falling && b.edge == core.EdgeFalling) || (!falling && b.edge == core.EdgeRising))
	if fire {
		b.pending = true
	}
	b.mu.Unlock()

	if fire {
		b.group.ctrl.Raise(b.group.IRQ)
	}
}

// IsInterruptPending reports the latched flag
func (b *Button) IsInterruptPending() bool {
	b.mu.Lock()
	hook := b.OnCheck
	b.mu.Unlock()
	if hook != nil {
		hook()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// ClearInterrupt acknowledges the latched flag
func (b *Button) ClearInterrupt() {
	b.mu.Lock()
	b.pending = false
	b.mu.Unlock()
}

// IsPressed reports whether the input is held low
func (b *Button) IsPressed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.level
}
