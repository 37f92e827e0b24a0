//go:build linux && !tinygo

// Package gpioboard runs the blinker on a Linux single-board computer,
// driving a real LED and button through the GPIO character device.
package gpioboard

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"blinky/core"
	"blinky/sim"
)

// Interrupt numbers on the host controller; the button wins ties
const (
	irqButton sim.IRQ = 1
	irqTimer  sim.IRQ = 2
)

// Config selects the chip and line offsets
type Config struct {
	Chip     string
	LED      int
	Button   int
	Debounce time.Duration // 0 leaves the line undebounced
}

// Board implements core.Board on top of two GPIO lines
type Board struct {
	core.PeripheralGuard

	cfg        Config
	Controller *sim.Controller

	led    *ledLine
	button *buttonLine
	timer  *tickTimer

	off     chan struct{}
	offOnce sync.Once
}

// Open requests both lines. The LED starts low and the button has edge
// detection off until ConfigureButton.
func Open(cfg Config) (*Board, error) {
	ctrl := sim.NewController()
	b := &Board{
		cfg:        cfg,
		Controller: ctrl,
		timer:      newTickTimer(irqTimer, ctrl),
		off:        make(chan struct{}),
	}

	ledLn, err := gpiocdev.RequestLine(cfg.Chip, cfg.LED, gpiocdev.AsOutput(0))
	if err != nil {
		ctrl.Detach()
		return nil, fmt.Errorf("failed to request LED line %s:%d: %w", cfg.Chip, cfg.LED, err)
	}
	b.led = &ledLine{line: ledLn}

	b.button = &buttonLine{ctrl: ctrl}
	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithEventHandler(b.button.handleEvent),
	}
	if cfg.Debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(cfg.Debounce))
	}
	btnLn, err := gpiocdev.RequestLine(cfg.Chip, cfg.Button, opts...)
	if err != nil {
		ledLn.Close()
		ctrl.Detach()
		return nil, fmt.Errorf("failed to request button line %s:%d: %w", cfg.Chip, cfg.Button, err)
	}
	b.button.line = btnLn

	return b, nil
}

// ClockLimits is unlimited; the host clock tree is not ours to change
func (b *Board) ClockLimits() core.ClockLimits {
	return core.ClockLimits{}
}

func (b *Board) ConfigureClocks(req core.ClockConfig) (core.Clocks, error) {
	return core.Clocks{SysClk: req.SysClk, PCLK1: req.PCLK1, PCLK2: req.PCLK2}, nil
}

func (b *Board) ConfigureLED() core.OutputPin {
	b.led.SetLow()
	return b.led
}

func (b *Board) ConfigureButton(edge core.Edge) core.InputPin {
	var err error
	if edge == core.EdgeRising {
		err = b.button.line.Reconfigure(gpiocdev.WithRisingEdge)
	} else {
		err = b.button.line.Reconfigure(gpiocdev.WithFallingEdge)
	}
	if err != nil {
		panic(fmt.Errorf("failed to enable edge detection on %s:%d: %w", b.cfg.Chip, b.cfg.Button, err))
	}
	return b.button
}

func (b *Board) ConfigureTimer() core.PeriodicTimer {
	return b.timer
}

func (b *Board) UnmaskInterrupts(onButton, onTimer func()) {
	b.Controller.Install(irqButton, onButton)
	b.Controller.Install(irqTimer, onTimer)
	b.Controller.Unmask(irqButton)
	b.Controller.Unmask(irqTimer)

	// An edge seen while setting up is delivered now
	if b.button.IsInterruptPending() {
		b.Controller.Raise(irqButton)
	}
}

func (b *Board) WaitForInterrupt() bool {
	return b.Controller.Wait(b.off)
}

// PowerOff stops the timer, turns the LED off and releases both lines
func (b *Board) PowerOff() {
	b.offOnce.Do(func() {
		close(b.off)
		b.Controller.Mask(irqButton)
		b.Controller.Mask(irqTimer)
		b.Controller.Detach()
		core.WithCritical(func(cs core.CriticalSection) {
			b.timer.Stop()
			b.led.SetLow()
		})
		b.button.line.Close()
		b.led.line.Reconfigure(gpiocdev.AsInput)
		b.led.line.Close()
	})
}

// LEDErr returns the last error writing the LED line
func (b *Board) LEDErr() error {
	return b.led.err
}

// ledLine is the LED as a gpiocdev output. Writes happen inside critical
// sections, so no locking of its own.
type ledLine struct {
	line *gpiocdev.Line
	high bool
	err  error
}

func (l *ledLine) set(high bool) {
	v := 0
	if high {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		l.err = err
		return
	}
	l.high = high
}

func (l *ledLine) SetHigh() {
	l.set(true)
}

func (l *ledLine) SetLow() {
	l.set(false)
}

func (l *ledLine) Toggle() {
	l.set(!l.high)
}

func (l *ledLine) IsSetHigh() bool {
	return l.high
}

// buttonLine latches edges reported by the gpiocdev watcher goroutine
type buttonLine struct {
	line    *gpiocdev.Line
	ctrl    *sim.Controller
	pending atomic.Bool
}

func (b *buttonLine) handleEvent(evt gpiocdev.LineEvent) {
	b.pending.Store(true)
	b.ctrl.Raise(irqButton)
}

func (b *buttonLine) IsInterruptPending() bool {
	return b.pending.Load()
}

func (b *buttonLine) ClearInterrupt() {
	b.pending.Store(false)
}
