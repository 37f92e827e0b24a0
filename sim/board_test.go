//go:build !tinygo

package sim

import (
	"errors"
	"sync"
	"testing"
	"time"

	"blinky/boards"
	"blinky/core"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	info, err := boards.All().Find("nucleo-f303re")
	if err != nil {
		t.Fatalf("Board lookup failed: %v", err)
	}
	board := NewBoard(info)
	t.Cleanup(board.PowerOff)
	return board
}

func startBoard(t *testing.T) (*Board, *core.Blinker) {
	t.Helper()
	board := newTestBoard(t)
	core.ClearTraceRing()
	blinker, err := core.Init(board, core.DefaultClockConfig())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return board, blinker
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func expectSnapshot(t *testing.T, blinker *core.Blinker, want core.Snapshot) {
	t.Helper()
	got := blinker.Snapshot()
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if !got.Consistent() {
		t.Errorf("Inconsistent state %+v", got)
	}
}

func TestInitStartsIdle(t *testing.T) {
	board, blinker := startBoard(t)

	expectSnapshot(t, blinker, core.Snapshot{})
	if blinker.Mode() != core.ModeIdle {
		t.Errorf("Expected idle, got %s", blinker.Mode())
	}
	if !board.Controller.IsUnmasked(board.Exti.IRQ) || !board.Controller.IsUnmasked(board.Timer.IRQ) {
		t.Error("Both interrupt lines should be unmasked after init")
	}
	if board.Timer.Starts() != 0 {
		t.Error("Timer must not be started by init")
	}
}

func TestScenario(t *testing.T) {
	board, blinker := startBoard(t)

	board.Button.Click()
	expectSnapshot(t, blinker, core.Snapshot{Running: true, LEDHigh: true, TimerRunning: true})

	board.Clock.Advance(1000 * time.Millisecond)
	expectSnapshot(t, blinker, core.Snapshot{Running: true, LEDHigh: false, TimerRunning: true})

	board.Clock.Advance(1000 * time.Millisecond)
	expectSnapshot(t, blinker, core.Snapshot{Running: true, LEDHigh: true, TimerRunning: true})

	board.Button.Click()
	expectSnapshot(t, blinker, core.Snapshot{})

	changes := board.LED.Changes()
	board.Clock.Advance(5 * time.Second)
	if board.LED.Changes() != changes {
		t.Errorf("LED changed %d times while idle", board.LED.Changes()-changes)
	}
	expectSnapshot(t, blinker, core.Snapshot{})
}

func TestPressParity(t *testing.T) {
	for presses := 0; presses < 8; presses++ {
		board, blinker := startBoard(t)

		for i := 0; i < presses; i++ {
			board.Button.Click()
			// Let some time pass between presses so the LED is in either level
			board.Clock.Advance(time.Duration(300*(i+1)) * time.Millisecond)
		}

		snap := blinker.Snapshot()
		if snap.Running != (presses%2 == 1) {
			t.Errorf("After %d presses running=%v", presses, snap.Running)
		}
		if !snap.Consistent() {
			t.Errorf("After %d presses inconsistent state %+v", presses, snap)
		}
		board.PowerOff()
	}
}

func TestOneTogglePerPeriod(t *testing.T) {
	board, _ := startBoard(t)

	board.Button.Click()
	board.Clock.Advance(10 * time.Second)

	history := board.LED.History()
	// Activation edge plus one toggle per elapsed period
	if len(history) != 11 {
		t.Fatalf("Expected 11 LED changes, got %d: %+v", len(history), history)
	}
	for i := 1; i < len(history); i++ {
		want := time.Duration(i) * core.TogglePeriod
		if history[i].At != want {
			t.Errorf("Toggle %d at %v, expected %v", i, history[i].At, want)
		}
		if history[i].High == history[i-1].High {
			t.Errorf("Toggle %d did not change level", i)
		}
	}
	if n := board.Controller.Serviced(board.Timer.IRQ); n != 10 {
		t.Errorf("Timer handler ran %d times, expected 10", n)
	}
}

func TestSpuriousEdgeOnSharedLine(t *testing.T) {
	board, blinker := startBoard(t)

	// PC10 shares EXTI15_10 with the button
	other := board.Exti.NewPin("PC10", 10)
	other.TriggerOnEdge(core.EdgeFalling)
	other.EnableInterrupt()

	for _, active := range []bool{false, true} {
		if active {
			board.Button.Click()
			board.Clock.Advance(400 * time.Millisecond)
		}
		before := blinker.Snapshot()
		starts, stops := board.Timer.Starts(), board.Timer.Stops()
		serviced := board.Controller.Serviced(board.Exti.IRQ)

		other.Click()

		if board.Controller.Serviced(board.Exti.IRQ) != serviced+1 {
			t.Fatal("Shared line handler did not run")
		}
		if after := blinker.Snapshot(); after != before {
			t.Errorf("Spurious edge changed state from %+v to %+v", before, after)
		}
		if board.Timer.Starts() != starts || board.Timer.Stops() != stops {
			t.Error("Spurious edge touched the timer")
		}
	}

	found := false
	for _, evt := range core.TraceRing() {
		if evt.Kind == core.EvtSpuriousEdge {
			found = true
		}
	}
	if !found {
		t.Error("Spurious edge was not traced")
	}
}

func TestTimerExpiryDeferredDuringButtonHandler(t *testing.T) {
	board, blinker := startBoard(t)

	board.Button.Click()
	board.Clock.Advance(999 * time.Millisecond)

	other := board.Exti.NewPin("PC11", 11)
	other.TriggerOnEdge(core.EdgeFalling)
	other.EnableInterrupt()

	var checked bool
	board.Button.OnCheck = func() {
		if checked {
			return
		}
		checked = true

		// The period elapses while the button handler holds the section
		board.Clock.Advance(time.Millisecond)

		if !board.Timer.UpdatePending() {
			t.Error("Update event was not latched")
		}
		if !board.Controller.IsPending(board.Timer.IRQ) {
			t.Error("Timer interrupt should stay pending inside the critical section")
		}
		if board.Controller.Serviced(board.Timer.IRQ) != 0 {
			t.Error("Timer handler preempted the button handler")
		}
	}

	other.Click()
	board.Button.OnCheck = nil

	if !checked {
		t.Fatal("Button handler never checked the pending flag")
	}
	if n := board.Controller.Serviced(board.Timer.IRQ); n != 1 {
		t.Errorf("Deferred timer interrupt ran %d times, expected 1", n)
	}
	if board.Controller.IsPending(board.Timer.IRQ) {
		t.Error("Timer interrupt still pending after release")
	}
	// Activation turned it high, the single deferred toggle turned it low
	expectSnapshot(t, blinker, core.Snapshot{Running: true, LEDHigh: false, TimerRunning: true})
}

func TestTimerExpiryDeferredWhileMasked(t *testing.T) {
	board, _ := startBoard(t)

	board.Button.Click()
	changes := board.LED.Changes()

	core.WithCritical(func(cs core.CriticalSection) {
		board.Clock.Advance(core.TogglePeriod)
		if board.LED.Changes() != changes {
			t.Error("LED toggled while interrupts were masked")
		}
	})

	if board.LED.Changes() != changes+1 {
		t.Errorf("Expected exactly one deferred toggle, got %d", board.LED.Changes()-changes)
	}
}

func TestStopDiscardsLatchedUpdate(t *testing.T) {
	board, blinker := startBoard(t)

	board.Button.Click()
	board.Clock.Advance(999 * time.Millisecond)

	// The period elapses just as the stopping press is being handled
	board.Button.OnCheck = func() {
		board.Button.OnCheck = nil
		board.Clock.Advance(time.Millisecond)
	}
	board.Button.Click()

	if n := board.Controller.Serviced(board.Timer.IRQ); n != 0 {
		t.Errorf("Timer handler ran %d times after the timer was stopped", n)
	}
	expectSnapshot(t, blinker, core.Snapshot{})
}

func TestTransitionsAreAtomic(t *testing.T) {
	board, blinker := startBoard(t)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	var bad []core.Snapshot
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if snap := blinker.Snapshot(); !snap.Consistent() {
				bad = append(bad, snap)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		board.Button.Click()
		board.Clock.Advance(250 * time.Millisecond)
	}
	close(stop)
	wg.Wait()

	if len(bad) > 0 {
		t.Errorf("Observed %d inconsistent snapshots, first %+v", len(bad), bad[0])
	}
}

func TestBounceTogglesEachEdge(t *testing.T) {
	testCases := []struct {
		extra   int
		running bool
	}{
		{0, true},
		{1, false},
		{2, true},
		{3, false},
	}

	for _, tc := range testCases {
		board, blinker := startBoard(t)
		board.Button.Bounce(tc.extra)

		snap := blinker.Snapshot()
		if snap.Running != tc.running {
			t.Errorf("Bounce(%d): running=%v, expected %v", tc.extra, snap.Running, tc.running)
		}
		if !snap.Consistent() {
			t.Errorf("Bounce(%d): inconsistent %+v", tc.extra, snap)
		}
		board.PowerOff()
	}
}

func TestReleaseDoesNotTrigger(t *testing.T) {
	board, blinker := startBoard(t)

	board.Button.Press()
	board.Clock.Advance(2500 * time.Millisecond)
	board.Button.Release()

	if !blinker.Snapshot().Running {
		t.Error("Rising edge on release stopped the timer")
	}
	if n := board.Controller.Serviced(board.Exti.IRQ); n != 1 {
		t.Errorf("Expected 1 button interrupt, got %d", n)
	}
}

func TestInitTwiceFails(t *testing.T) {
	board, _ := startBoard(t)

	if _, err := core.Init(board, core.DefaultClockConfig()); !errors.Is(err, core.ErrPeripheralsTaken) {
		t.Errorf("Expected ErrPeripheralsTaken, got %v", err)
	}
}

func TestInitRejectsBadClocks(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*core.ClockConfig)
		want   error
	}{
		{"pclk1 over limit", func(c *core.ClockConfig) { c.PCLK1 = 72 * core.MHz }, core.ErrClockLimit},
		{"sysclk over limit", func(c *core.ClockConfig) { c.SysClk = 128 * core.MHz }, core.ErrClockLimit},
		{"wrong oscillator", func(c *core.ClockConfig) { c.HSE = 16 * core.MHz }, ErrOscillatorMismatch},
	}

	for _, tc := range testCases {
		board := newTestBoard(t)
		cfg := core.DefaultClockConfig()
		tc.modify(&cfg)

		if _, err := core.Init(board, cfg); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if board.Controller.IsUnmasked(board.Exti.IRQ) {
			t.Errorf("%s: interrupts unmasked after a configuration fault", tc.name)
		}
		board.PowerOff()
	}
}

func TestRunIdlesUntilPowerOff(t *testing.T) {
	board := newTestBoard(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		core.Run(board, core.DefaultClockConfig())
	}()

	waitFor(t, "initialization", func() bool {
		return board.Controller.IsUnmasked(board.Timer.IRQ)
	})

	// The press may be delivered on Run's goroutine if it is inside a
	// critical section at that moment
	board.Button.Click()
	waitFor(t, "timer start", board.Timer.IsRunning)

	board.PowerOff()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after power off")
	}
}

func TestTraceRecordsTransitions(t *testing.T) {
	board, _ := startBoard(t)

	board.Button.Click()
	board.Clock.Advance(core.TogglePeriod)
	board.Button.Click()

	want := []uint8{
		core.EvtBoot,
		core.EvtButtonEdge, core.EvtTimerStart,
		core.EvtLEDToggle,
		core.EvtButtonEdge, core.EvtTimerStop,
	}
	events := core.TraceRing()
	if len(events) != len(want) {
		t.Fatalf("Expected %d events, got %d: %v", len(want), len(events), events)
	}
	for i, evt := range events {
		if evt.Kind != want[i] {
			t.Errorf("Event %d: expected %d, got %s", i, want[i], evt.Name())
		}
	}
	if events[3].Clock != core.TimerFromDuration(core.TogglePeriod) {
		t.Errorf("Toggle traced at %d ticks", events[3].Clock)
	}
}
