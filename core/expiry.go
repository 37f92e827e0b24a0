package core

// HandleTimerExpiry is the update-event interrupt handler for the periodic timer
func (b *Blinker) HandleTimerExpiry() {
	WithCritical(func(cs CriticalSection) {
		sh := b.store.Borrow(cs)

		// Clear first or the handler is re-entered immediately
		sh.timer().ClearUpdate()

		led := sh.led()
		led.Toggle()

		DebugPrintln("Toggling LED state")
		RecordTrace(EvtLEDToggle, boolValue(led.IsSetHigh()))
	})
}
