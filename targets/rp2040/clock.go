//go:build rp2040

package main

import (
	"blinky/core"
	"errors"
	"machine"
	"runtime/volatile"
	"unsafe"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerALARM1   = timerBase + 0x14 // Writing arms alarm 1
	timerARMED    = timerBase + 0x20 // Write 1 to disarm
	timerTIMERAWH = timerBase + 0x24 // Raw timer high word
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word
	timerINTR     = timerBase + 0x34 // Raw interrupts, write 1 to clear
	timerINTE     = timerBase + 0x38 // Interrupt enable

	// Alarm 0 belongs to the TinyGo runtime
	alarmBit = 1 << 1
)

var (
	timerRAWH  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
	timerAlarm = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM1)))
	timerArmed = (*volatile.Register32)(unsafe.Pointer(uintptr(timerARMED)))
	timerIntr  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTR)))
	timerInte  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTE)))
)

var errClockMismatch = errors.New("requested sysclk differs from the runtime clock")

// clockRequest matches what the TinyGo runtime programs into the PLL
func clockRequest() core.ClockConfig {
	return core.ClockConfig{
		HSE:    12 * core.MHz,
		SysClk: 125 * core.MHz,
		PCLK1:  125 * core.MHz,
		PCLK2:  125 * core.MHz,
	}
}

// configureClocks verifies the request against the running clock tree.
// The runtime sets up the PLL before main, so nothing is reprogrammed here.
func configureClocks(req core.ClockConfig) (core.Clocks, error) {
	cpu := machine.CPUFrequency()
	if req.SysClk != 0 && req.SysClk != cpu {
		return core.Clocks{}, errClockMismatch
	}
	// clk_peri runs from clk_sys
	return core.Clocks{SysClk: cpu, PCLK1: cpu, PCLK2: cpu}, nil
}

// GetHardwareTime reads the low 32 bits of the microsecond counter
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// GetHardwareUptime reads the full 64-bit RP2040 hardware timer
func GetHardwareUptime() uint64 {
	// Read high, low, high again to detect rollover
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()

		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

// UpdateSystemTime updates the core timer with hardware time
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}
