package core

const (
	MHz = 1000000
)

// ClockConfig is the requested clock tree
type ClockConfig struct {
	HSE       uint32 // External oscillator, 0 to run from the internal one
	BypassHSE bool   // HSE is an externally driven clock, not a crystal
	SysClk    uint32
	PCLK1     uint32
	PCLK2     uint32
}

// DefaultClockConfig is an 8 MHz bypassed HSE with the F303 bus maxima
func DefaultClockConfig() ClockConfig {
	return ClockConfig{
		HSE:       8 * MHz,
		BypassHSE: true,
		SysClk:    72 * MHz,
		PCLK1:     36 * MHz,
		PCLK2:     72 * MHz,
	}
}

// ClockLimits are the maximum frequencies a part allows. Zero means unlimited.
type ClockLimits struct {
	SysClk uint32
	PCLK1  uint32
	PCLK2  uint32
}

// Clocks are the frequencies the board actually froze
type Clocks struct {
	SysClk uint32
	PCLK1  uint32
	PCLK2  uint32
}

// ClockError reports a bus running above its limit
type ClockError struct {
	Bus  string
	Freq uint32
	Max  uint32
}

func (e *ClockError) Error() string {
	return "clock " + e.Bus + " at " + utoa(e.Freq) + " Hz exceeds limit of " + utoa(e.Max) + " Hz"
}

func (e *ClockError) Unwrap() error {
	return ErrClockLimit
}

// Check validates a request before it is applied
func (c ClockConfig) Check(limits ClockLimits) error {
	return Clocks{SysClk: c.SysClk, PCLK1: c.PCLK1, PCLK2: c.PCLK2}.Check(limits)
}

// Check validates frozen clocks
func (c Clocks) Check(limits ClockLimits) error {
	if err := checkBus("sysclk", c.SysClk, limits.SysClk); err != nil {
		return err
	}
	if err := checkBus("pclk1", c.PCLK1, limits.PCLK1); err != nil {
		return err
	}
	return checkBus("pclk2", c.PCLK2, limits.PCLK2)
}

func checkBus(bus string, freq, max uint32) error {
	if max != 0 && freq > max {
		return &ClockError{Bus: bus, Freq: freq, Max: max}
	}
	return nil
}
