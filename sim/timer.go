//go:build !tinygo

package sim

import (
	"sync"
	"time"
)

// Timer is a simulated up-counting reload timer.
// It implements core.PeriodicTimer.
type Timer struct {
	Name string
	IRQ  IRQ

	ctrl *Controller

	mu            sync.Mutex
	running       bool
	period        time.Duration
	count         time.Duration
	updatePending bool
	updateIE      bool
	starts        int
	stops         int
}

func newTimer(name string, irq IRQ, ctrl *Controller) *Timer {
	return &Timer{Name: name, IRQ: irq, ctrl: ctrl}
}

// EnableUpdateInterrupt makes every update event raise the timer's line
func (t *Timer) EnableUpdateInterrupt() {
	t.mu.Lock()
	t.updateIE = true
	t.mu.Unlock()
}

func (t *Timer) Start(period time.Duration) {
	t.mu.Lock()
	t.running = true
	t.period = period
	t.count = 0
	t.starts++
	t.mu.Unlock()
}

func (t *Timer) Stop() {
	t.mu.Lock()
	t.running = false
	t.count = 0
	latched := t.updatePending
	t.updatePending = false
	t.stops++
	t.mu.Unlock()

	if latched {
		t.ctrl.Unpend(t.IRQ)
	}
}

func (t *Timer) ClearUpdate() {
	t.mu.Lock()
	t.updatePending = false
	t.mu.Unlock()
}

func (t *Timer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// UpdatePending reports the latched update-event flag
func (t *Timer) UpdatePending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updatePending
}

// Starts returns how many times Start was called
func (t *Timer) Starts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.starts
}

// Stops returns how many times Stop was called
func (t *Timer) Stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}

func (t *Timer) tick(step time.Duration) {
	t.mu.Lock()
	if !t.running || t.period <= 0 {
		t.mu.Unlock()
		return
	}

	t.count += step
	fire := false
	if t.count >= t.period {
		t.count -= t.period
		t.updatePending = true
		fire = t.updateIE
	}
	t.mu.Unlock()

	if fire {
		t.ctrl.Raise(t.IRQ)
	}
}
