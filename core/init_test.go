package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestInitOrder(t *testing.T) {
	board := newFakeBoard()

	blinker, err := Init(board, DefaultClockConfig())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	want := []string{"take", "clocks", "led", "button", "timer", "unmask"}
	if !reflect.DeepEqual(board.calls, want) {
		t.Errorf("Expected calls %v, got %v", want, board.calls)
	}
	if board.edge != EdgeFalling {
		t.Errorf("Button configured for edge %d, expected falling", board.edge)
	}
	if board.onButton == nil || board.onTimer == nil {
		t.Fatal("Handlers were not handed to the board")
	}

	snap := blinker.Snapshot()
	if snap != (Snapshot{}) {
		t.Errorf("Expected idle snapshot, got %+v", snap)
	}
	if board.timer.running {
		t.Error("Init must not start the timer")
	}

	// The installed handlers drive the same store
	board.button.pending = true
	board.onButton()
	if !blinker.Snapshot().Running {
		t.Error("Installed button handler did not reach the store")
	}
	board.onTimer()
	if board.led.toggles != 1 {
		t.Errorf("Installed timer handler toggled %d times", board.led.toggles)
	}
}

func TestInitTakesPeripheralsOnce(t *testing.T) {
	board := newFakeBoard()

	if _, err := Init(board, DefaultClockConfig()); err != nil {
		t.Fatalf("First Init failed: %v", err)
	}
	board.calls = nil

	_, err := Init(board, DefaultClockConfig())
	if !errors.Is(err, ErrPeripheralsTaken) {
		t.Errorf("Expected ErrPeripheralsTaken, got %v", err)
	}
	if len(board.calls) != 1 {
		t.Errorf("Second Init went past take: %v", board.calls)
	}
}

func TestInitClockFaults(t *testing.T) {
	boom := errors.New("pll did not lock")

	testCases := []struct {
		name  string
		setup func(b *fakeBoard, req *ClockConfig)
		want  error
	}{
		{
			name:  "request over limit",
			setup: func(b *fakeBoard, req *ClockConfig) { req.PCLK1 = 72 * MHz },
			want:  ErrClockLimit,
		},
		{
			name: "frozen clocks over limit",
			setup: func(b *fakeBoard, req *ClockConfig) {
				b.clocks = &Clocks{SysClk: 80 * MHz, PCLK1: 36 * MHz, PCLK2: 72 * MHz}
			},
			want: ErrClockLimit,
		},
		{
			name:  "board error",
			setup: func(b *fakeBoard, req *ClockConfig) { b.clockErr = boom },
			want:  boom,
		},
	}

	for _, tc := range testCases {
		board := newFakeBoard()
		req := DefaultClockConfig()
		tc.setup(board, &req)

		_, err := Init(board, req)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if board.onButton != nil {
			t.Errorf("%s: handlers installed despite a configuration fault", tc.name)
		}
	}
}

func TestRunPanicsOnConfigurationFault(t *testing.T) {
	board := newFakeBoard()
	board.clockErr = errors.New("no oscillator")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected Run to panic")
		}
	}()
	Run(board, DefaultClockConfig())
}

func TestRunIdlesAfterInit(t *testing.T) {
	board := newFakeBoard()

	Run(board, DefaultClockConfig())

	if board.wakeups != 3 {
		t.Errorf("Expected Run to wait until power off, waited %d times", board.wakeups)
	}
	if board.onButton == nil {
		t.Error("Run did not initialize the board")
	}
}
