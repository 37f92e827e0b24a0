//go:build !tinygo

package gpioboard

import (
	"sync"
	"time"

	"blinky/core"
	"blinky/sim"
)

// tickTimer is a periodic timer driven by a time.Ticker goroutine. Each
// tick latches an update and raises irq on the controller. Ticks that
// arrive while an update is still latched coalesce with it.
type tickTimer struct {
	irq  sim.IRQ
	ctrl *sim.Controller

	mu      sync.Mutex
	running bool
	latched bool
	gen     uint64
	stop    chan struct{}
}

func newTickTimer(irq sim.IRQ, ctrl *sim.Controller) *tickTimer {
	return &tickTimer{irq: irq, ctrl: ctrl}
}

func (t *tickTimer) Start(period time.Duration) {
	t.mu.Lock()
	t.stopLocked()
	t.running = true
	t.gen++
	gen := t.gen
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go t.loop(period, gen, stop)
}

func (t *tickTimer) loop(period time.Duration, gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			current := false
			// Latch and raise atomically with respect to Stop, which runs
			// inside a handler's critical section
			core.WithCritical(func(cs core.CriticalSection) {
				t.mu.Lock()
				defer t.mu.Unlock()
				current = t.gen == gen && t.running
				if current {
					t.latched = true
					t.ctrl.Raise(t.irq)
				}
			})
			if !current {
				return
			}
		case <-stop:
			return
		}
	}
}

func (t *tickTimer) Stop() {
	t.mu.Lock()
	t.stopLocked()
	t.mu.Unlock()
	t.ctrl.Unpend(t.irq)
}

func (t *tickTimer) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.running = false
	t.latched = false
}

func (t *tickTimer) ClearUpdate() {
	t.mu.Lock()
	t.latched = false
	t.mu.Unlock()
}

func (t *tickTimer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// updatePending reports an unacknowledged tick
func (t *tickTimer) updatePending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latched
}
