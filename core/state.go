package core

// Shared holds everything the handlers touch. It lives inside a Store and is
// only reachable through Store.Borrow.
type Shared struct {
	LED     OutputPin
	Button  InputPin
	Timer   PeriodicTimer
	Running bool
}

func (s *Shared) led() OutputPin {
	if s.LED == nil {
		fault("LED")
	}
	return s.LED
}

func (s *Shared) button() InputPin {
	if s.Button == nil {
		fault("button")
	}
	return s.Button
}

func (s *Shared) timer() PeriodicTimer {
	if s.Timer == nil {
		fault("timer")
	}
	return s.Timer
}

// fault records the logic fault and halts. It is only reachable if an
// interrupt was unmasked before initialization finished.
func fault(cell string) {
	RecordTrace(EvtFault, 0)
	panic(&FaultError{Cell: cell})
}

// Store owns the shared cells for the lifetime of the program
type Store struct {
	shared Shared
}

// Borrow returns the shared cells. cs proves interrupts are masked.
func (s *Store) Borrow(cs CriticalSection) *Shared {
	if !cs.valid {
		panic(ErrForgedCriticalSection)
	}
	return &s.shared
}

// Access runs fn on the shared cells inside a critical section
func (s *Store) Access(fn func(sh *Shared)) {
	WithCritical(func(cs CriticalSection) {
		fn(s.Borrow(cs))
	})
}

// Mode is the logical state of the blinker
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeActive
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeActive:
		return "active"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of the shared cells
type Snapshot struct {
	Running      bool
	LEDHigh      bool
	TimerRunning bool
}

// Mode derives the logical state from the running flag
func (s Snapshot) Mode() Mode {
	if s.Running {
		return ModeActive
	}
	return ModeIdle
}

// Consistent reports whether the flag agrees with the timer and, when idle,
// the LED is forced low
func (s Snapshot) Consistent() bool {
	if s.Running != s.TimerRunning {
		return false
	}
	return s.Running || !s.LEDHigh
}
