//go:build !tinygo

package sim

import (
	"errors"
	"sync"

	"blinky/boards"
	"blinky/core"
)

var ErrOscillatorMismatch = errors.New("requested HSE does not match the board oscillator")

// Board wires simulated peripherals together according to a board
// database entry. It implements core.Board.
type Board struct {
	core.PeripheralGuard

	Info       boards.Info
	Clock      *Clock
	Controller *Controller
	Exti       *ExtiGroup
	LED        *LED
	Button     *Button
	Timer      *Timer

	clocks  core.Clocks
	other   *Button
	off     chan struct{}
	offOnce sync.Once
}

// NewBoard builds a powered-on board. Only one board should be live at a
// time since its controller hooks the process-wide critical section.
func NewBoard(info boards.Info) *Board {
	clock := NewClock()
	ctrl := NewController()
	exti := NewExtiGroup(info.Exti.Name, IRQ(info.Exti.IRQ), ctrl)
	timer := newTimer(info.Timer.Name, IRQ(info.Timer.IRQ), ctrl)
	clock.attach(timer)

	return &Board{
		Info:       info,
		Clock:      clock,
		Controller: ctrl,
		Exti:       exti,
		LED:        newLED(clock),
		Button:     exti.NewPin(info.Button.Name, info.Button.Pin),
		Timer:      timer,
		off:        make(chan struct{}),
	}
}

func (b *Board) ClockLimits() core.ClockLimits {
	return b.Info.Clocks.Limits()
}

// ConfigureClocks freezes the request as given; the simulated PLL always
// locks exactly
func (b *Board) ConfigureClocks(req core.ClockConfig) (core.Clocks, error) {
	if req.HSE != 0 && b.Info.Clocks.HSE != 0 && req.HSE != b.Info.Clocks.HSE {
		return core.Clocks{}, ErrOscillatorMismatch
	}
	b.clocks = core.Clocks{
		SysClk: req.SysClk,
		PCLK1:  req.PCLK1,
		PCLK2:  req.PCLK2,
	}
	return b.clocks, nil
}

// Clocks returns what ConfigureClocks froze
func (b *Board) Clocks() core.Clocks {
	return b.clocks
}

func (b *Board) ConfigureLED() core.OutputPin {
	b.LED.SetLow()
	return b.LED
}

func (b *Board) ConfigureButton(edge core.Edge) core.InputPin {
	b.Button.TriggerOnEdge(edge)
	b.Button.EnableInterrupt()
	return b.Button
}

func (b *Board) ConfigureTimer() core.PeriodicTimer {
	b.Timer.EnableUpdateInterrupt()
	return b.Timer
}

func (b *Board) UnmaskInterrupts(onButton, onTimer func()) {
	b.Controller.Install(b.Exti.IRQ, onButton)
	b.Controller.Install(b.Timer.IRQ, onTimer)
	b.Controller.Unmask(b.Exti.IRQ)
	b.Controller.Unmask(b.Timer.IRQ)
}

func (b *Board) WaitForInterrupt() bool {
	return b.Controller.Wait(b.off)
}

// PowerOff makes WaitForInterrupt return false and detaches the controller
func (b *Board) PowerOff() {
	b.offOnce.Do(func() {
		close(b.off)
		b.Controller.Detach()
	})
}
