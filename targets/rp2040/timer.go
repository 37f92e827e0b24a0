//go:build rp2040

package main

import (
	"blinky/core"
	"runtime/interrupt"
	"time"
)

// TIMER_IRQ_1 on the RP2040
const irqTimer1 = 1

// alarmTimer builds a reload timer out of one-shot alarm 1: every
// acknowledged update re-arms the alarm one period after the last deadline
// so the period does not drift with handler latency.
type alarmTimer struct {
	running  bool
	periodUS uint32
	deadline uint32
	intr     interrupt.Interrupt
	onUpdate func()
}

var picoTimer alarmTimer

func timerIRQHandler(intr interrupt.Interrupt) {
	UpdateSystemTime()
	// Stop clears the raw bit; a late entry after that is not an update
	if timerIntr.Get()&alarmBit == 0 {
		return
	}
	if picoTimer.onUpdate != nil {
		picoTimer.onUpdate()
	}
}

func (t *alarmTimer) configure() {
	timerInte.SetBits(alarmBit)
	t.intr = interrupt.New(irqTimer1, timerIRQHandler)
	t.intr.SetPriority(0xC0)
}

func (t *alarmTimer) Start(period time.Duration) {
	t.periodUS = core.TimerFromDuration(period)
	t.deadline = GetHardwareTime() + t.periodUS
	t.running = true
	timerIntr.Set(alarmBit)
	timerAlarm.Set(t.deadline)
}

func (t *alarmTimer) Stop() {
	t.running = false
	timerArmed.Set(alarmBit)
	timerIntr.Set(alarmBit)
}

func (t *alarmTimer) ClearUpdate() {
	timerIntr.Set(alarmBit)
	if t.running {
		t.deadline += t.periodUS
		timerAlarm.Set(t.deadline)
	}
}

func (t *alarmTimer) IsRunning() bool {
	return t.running
}
