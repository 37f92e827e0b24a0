// Package config loads the host tool configuration
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"blinky/core"
)

// Config is the host-side configuration for the simulator and trace monitor
type Config struct {
	Board  string         `json:"board"`
	Clocks ClockSettings  `json:"clocks"`
	Trace  TraceSettings  `json:"trace"`
	Serial SerialSettings `json:"serial"`
	GPIO   GPIOSettings   `json:"gpio"`
}

// ClockSettings is the clock tree requested from the board
type ClockSettings struct {
	HSE       uint32 `json:"hse"`
	BypassHSE *bool  `json:"bypass_hse,omitempty"`
	SysClk    uint32 `json:"sysclk"`
	PCLK1     uint32 `json:"pclk1"`
	PCLK2     uint32 `json:"pclk2"`
}

type TraceSettings struct {
	Debug      bool `json:"debug"`        // Print core debug messages
	Events     bool `json:"events"`       // Print every trace event as it happens
	DumpOnExit bool `json:"dump_on_exit"` // Dump the trace ring when the simulator exits
}

type SerialSettings struct {
	Device      string `json:"device"`
	Baud        int    `json:"baud"`
	ReadTimeout int    `json:"read_timeout_ms"`
}

// GPIOSettings locate the LED and button on a Linux GPIO chip
type GPIOSettings struct {
	Chip       string `json:"chip"`
	LED        int    `json:"led"`
	Button     int    `json:"button"`
	DebounceMS int    `json:"debounce_ms"`
}

// LoadConfig parses a JSON configuration and fills in defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	return &config, nil
}

// LoadFile reads and parses a configuration file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	config, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return config, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *Config) {
	if config.Board == "" {
		config.Board = "nucleo-f303re"
	}

	// Clocks default to the F303 maxima from an 8 MHz bypassed HSE
	defaults := core.DefaultClockConfig()
	if config.Clocks.HSE == 0 {
		config.Clocks.HSE = defaults.HSE
	}
	if config.Clocks.BypassHSE == nil {
		bypass := defaults.BypassHSE
		config.Clocks.BypassHSE = &bypass
	}
	if config.Clocks.SysClk == 0 {
		config.Clocks.SysClk = defaults.SysClk
	}
	if config.Clocks.PCLK1 == 0 {
		config.Clocks.PCLK1 = defaults.PCLK1
	}
	if config.Clocks.PCLK2 == 0 {
		config.Clocks.PCLK2 = defaults.PCLK2
	}

	if config.Serial.Device == "" {
		config.Serial.Device = "/dev/ttyUSB0"
	}
	if config.Serial.Baud == 0 {
		config.Serial.Baud = 115200
	}
	if config.Serial.ReadTimeout == 0 {
		config.Serial.ReadTimeout = 100
	}

	// BCM 17 and 27 on a Raspberry Pi header
	if config.GPIO.Chip == "" {
		config.GPIO.Chip = "gpiochip0"
	}
	if config.GPIO.LED == 0 {
		config.GPIO.LED = 17
	}
	if config.GPIO.Button == 0 {
		config.GPIO.Button = 27
	}
}

// ClockConfig converts the settings into a core request
func (c ClockSettings) ClockConfig() core.ClockConfig {
	bypass := false
	if c.BypassHSE != nil {
		bypass = *c.BypassHSE
	}
	return core.ClockConfig{
		HSE:       c.HSE,
		BypassHSE: bypass,
		SysClk:    c.SysClk,
		PCLK1:     c.PCLK1,
		PCLK2:     c.PCLK2,
	}
}
