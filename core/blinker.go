package core

import "time"

// Blinker ties the two interrupt handlers to a Store
type Blinker struct {
	store  *Store
	period time.Duration
}

// NewBlinker creates a blinker over store toggling every TogglePeriod
func NewBlinker(store *Store) *Blinker {
	return &Blinker{
		store:  store,
		period: TogglePeriod,
	}
}

// Store returns the shared state container
func (b *Blinker) Store() *Store {
	return b.store
}

// Snapshot reads all shared cells in one critical section
func (b *Blinker) Snapshot() Snapshot {
	var snap Snapshot
	b.store.Access(func(sh *Shared) {
		snap.Running = sh.Running
		snap.LEDHigh = sh.led().IsSetHigh()
		snap.TimerRunning = sh.timer().IsRunning()
	})
	return snap
}

// Mode returns Idle or Active
func (b *Blinker) Mode() Mode {
	return b.Snapshot().Mode()
}
