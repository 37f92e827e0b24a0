package core

// Init performs the one-time setup: claim the board, bring up the clocks,
// install the LED, button and timer into a fresh Store, then unmask both
// interrupt lines. The blinker starts Idle.
func Init(board Board, req ClockConfig) (*Blinker, error) {
	if err := board.Take(); err != nil {
		return nil, err
	}

	limits := board.ClockLimits()
	if err := req.Check(limits); err != nil {
		return nil, err
	}
	clocks, err := board.ConfigureClocks(req)
	if err != nil {
		return nil, err
	}
	if err := clocks.Check(limits); err != nil {
		return nil, err
	}

	store := &Store{}
	blinker := NewBlinker(store)

	led := board.ConfigureLED()
	store.Access(func(sh *Shared) {
		sh.LED = led
	})

	button := board.ConfigureButton(EdgeFalling)
	store.Access(func(sh *Shared) {
		sh.Button = button
	})

	timer := board.ConfigureTimer()
	store.Access(func(sh *Shared) {
		sh.Timer = timer
		sh.Running = false
	})

	// Nothing may fire before every cell above is installed
	board.UnmaskInterrupts(blinker.HandleButtonEdge, blinker.HandleTimerExpiry)

	WithCritical(func(cs CriticalSection) {
		RecordTrace(EvtBoot, clocks.SysClk/MHz)
	})
	DebugPrintln("Looping, waiting for button press...")

	return blinker, nil
}

// Run initializes the board and then idles, waking only to service
// interrupts. Configuration faults are fatal. On hardware Run never returns.
func Run(board Board, req ClockConfig) {
	if _, err := Init(board, req); err != nil {
		panic(err)
	}

	for board.WaitForInterrupt() {
	}
}
