package serial

import (
	"io"
	"time"
)

// Port is the link a board streams trace frames over
type Port interface {
	io.ReadWriteCloser

	// Flush discards anything buffered in the receive direction
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the board's trace UART
	Baud int

	// Read timeout, 0 blocks forever
	ReadTimeout time.Duration
}

// DefaultConfig matches the trace UART set up by the firmware
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}
