//go:build !tinygo

package sim

import (
	"sync/atomic"
	"time"

	"blinky/core"
)

// Resolution is the simulated clock step
const Resolution = time.Millisecond

type ticker interface {
	tick(step time.Duration)
}

// Clock is simulated time. It only moves when Advance is called and it
// mirrors itself into core.SetTime so trace events carry simulated time.
type Clock struct {
	now     atomic.Int64
	tickers []ticker
}

// NewClock creates a clock at zero
func NewClock() *Clock {
	core.SetTime(0)
	return &Clock{}
}

func (c *Clock) attach(t ticker) {
	c.tickers = append(c.tickers, t)
}

// Now returns the elapsed simulated time
func (c *Clock) Now() time.Duration {
	return time.Duration(c.now.Load())
}

// Advance moves time forward in Resolution steps, letting every attached
// peripheral count and raise interrupts along the way. Advance may be
// called from inside a handler; interrupts raised then stay pending.
func (c *Clock) Advance(d time.Duration) {
	for d > 0 {
		step := Resolution
		if d < step {
			step = d
		}
		d -= step

		now := c.now.Add(int64(step))
		core.SetTime(core.TimerFromDuration(time.Duration(now)))

		for _, t := range c.tickers {
			t.tick(step)
		}
	}
}
