package core

// HandleButtonEdge is the falling-edge interrupt handler for the button.
//
// Contact bounce can invoke it several times per press. Each call toggles,
// so an unclean press may start and stop the timer more than once.
func (b *Blinker) HandleButtonEdge() {
	WithCritical(func(cs CriticalSection) {
		sh := b.store.Borrow(cs)

		// The line is shared with other pins
		button := sh.button()
		if !button.IsInterruptPending() {
			RecordTrace(EvtSpuriousEdge, 0)
			return
		}

		// Acknowledge before anything can raise the line again
		button.ClearInterrupt()

		wasRunning := sh.Running
		sh.Running = !wasRunning
		RecordTrace(EvtButtonEdge, boolValue(sh.Running))

		timer := sh.timer()
		led := sh.led()

		if wasRunning {
			DebugPrintln("Stopping timer and turning off LED")
			timer.Stop()
			led.SetLow()
			RecordTrace(EvtTimerStop, 0)
		} else {
			DebugPrintln("Starting timer and turning on LED")
			timer.Start(b.period)
			led.SetHigh()
			RecordTrace(EvtTimerStart, uint32(b.period.Milliseconds()))
		}
	})
}

func boolValue(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}
