package core

import "time"

type fakeLED struct {
	high    bool
	toggles int
}

func (l *fakeLED) SetHigh()        { l.high = true }
func (l *fakeLED) SetLow()         { l.high = false }
func (l *fakeLED) Toggle()         { l.high = !l.high; l.toggles++ }
func (l *fakeLED) IsSetHigh() bool { return l.high }

type fakeButton struct {
	pending bool
	clears  int
}

func (b *fakeButton) IsInterruptPending() bool { return b.pending }
func (b *fakeButton) ClearInterrupt()          { b.pending = false; b.clears++ }

type fakeTimer struct {
	running bool
	period  time.Duration
	update  bool
	acks    int
}

func (t *fakeTimer) Start(period time.Duration) { t.running = true; t.period = period }
func (t *fakeTimer) Stop()                      { t.running = false; t.update = false }
func (t *fakeTimer) ClearUpdate()               { t.update = false; t.acks++ }
func (t *fakeTimer) IsRunning() bool            { return t.running }

// fakeBoard records the order of Init's calls
type fakeBoard struct {
	PeripheralGuard

	calls    []string
	limits   ClockLimits
	clocks   *Clocks // overrides what ConfigureClocks reports
	clockErr error
	edge     Edge

	led    *fakeLED
	button *fakeButton
	timer  *fakeTimer

	onButton, onTimer func()
	wakeups           int
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		limits: ClockLimits{SysClk: 72 * MHz, PCLK1: 36 * MHz, PCLK2: 72 * MHz},
		led:    &fakeLED{high: true},
		button: &fakeButton{},
		timer:  &fakeTimer{},
	}
}

func (b *fakeBoard) Take() error {
	b.calls = append(b.calls, "take")
	return b.PeripheralGuard.Take()
}

func (b *fakeBoard) ClockLimits() ClockLimits {
	return b.limits
}

func (b *fakeBoard) ConfigureClocks(req ClockConfig) (Clocks, error) {
	b.calls = append(b.calls, "clocks")
	if b.clockErr != nil {
		return Clocks{}, b.clockErr
	}
	if b.clocks != nil {
		return *b.clocks, nil
	}
	return Clocks{SysClk: req.SysClk, PCLK1: req.PCLK1, PCLK2: req.PCLK2}, nil
}

func (b *fakeBoard) ConfigureLED() OutputPin {
	b.calls = append(b.calls, "led")
	b.led.high = false
	return b.led
}

func (b *fakeBoard) ConfigureButton(edge Edge) InputPin {
	b.calls = append(b.calls, "button")
	b.edge = edge
	return b.button
}

func (b *fakeBoard) ConfigureTimer() PeriodicTimer {
	b.calls = append(b.calls, "timer")
	return b.timer
}

func (b *fakeBoard) UnmaskInterrupts(onButton, onTimer func()) {
	b.calls = append(b.calls, "unmask")
	b.onButton = onButton
	b.onTimer = onTimer
}

func (b *fakeBoard) WaitForInterrupt() bool {
	b.wakeups++
	return b.wakeups < 3
}
