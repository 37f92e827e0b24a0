// Package boards is the database of supported boards: which pins carry the
// LED and the button, which interrupt lines they raise, and clock limits.
package boards

import (
	_ "embed"
	"errors"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"blinky/core"
)

//go:embed boards.yaml
var rawBoards []byte

var boards Boards

var ErrBoardNotFound = errors.New("board not found")

// All returns every known board
func All() Boards {
	return boards
}

type Boards []Info

type Info struct {
	Name    string    `yaml:"name"`
	MCU     string    `yaml:"mcu"`
	Aliases []string  `yaml:"aliases"`
	LED     PinInfo   `yaml:"led"`
	Button  PinInfo   `yaml:"button"`
	Exti    LineInfo  `yaml:"exti"`
	Timer   TimerInfo `yaml:"timer"`
	Clocks  ClockInfo `yaml:"clocks"`
}

type PinInfo struct {
	Name      string `yaml:"name"`
	Pin       uint8  `yaml:"pin"`
	ActiveLow bool   `yaml:"activeLow"`
}

// LineInfo describes an external interrupt line shared by a range of pins
type LineInfo struct {
	Name      string `yaml:"name"`
	IRQ       uint16 `yaml:"irq"`
	FirstLine uint8  `yaml:"firstLine"`
	LastLine  uint8  `yaml:"lastLine"`
}

type TimerInfo struct {
	Name string `yaml:"name"`
	IRQ  uint16 `yaml:"irq"`
}

type ClockInfo struct {
	HSE       uint32 `yaml:"hse"`
	SysClkMax uint32 `yaml:"sysclkMax"`
	PCLK1Max  uint32 `yaml:"pclk1Max"`
	PCLK2Max  uint32 `yaml:"pclk2Max"`
}

// Request asks for every bus at its limit from the board oscillator
func (c ClockInfo) Request() core.ClockConfig {
	return core.ClockConfig{
		HSE:       c.HSE,
		BypassHSE: c.HSE != 0,
		SysClk:    c.SysClkMax,
		PCLK1:     c.PCLK1Max,
		PCLK2:     c.PCLK2Max,
	}
}

// Limits converts the clock section into core limits
func (c ClockInfo) Limits() core.ClockLimits {
	return core.ClockLimits{
		SysClk: c.SysClkMax,
		PCLK1:  c.PCLK1Max,
		PCLK2:  c.PCLK2Max,
	}
}

// Shares reports whether pin sits on the line's pin range
func (l LineInfo) Shares(pin uint8) bool {
	return pin >= l.FirstLine && pin <= l.LastLine
}

// Find looks a board up by name or alias, ignoring case
func (b Boards) Find(name string) (Info, error) {
	name = strings.ToLower(name)
	idx := slices.IndexFunc(b, func(info Info) bool {
		return info.Name == name || slices.Contains(info.Aliases, name)
	})
	if idx < 0 {
		return Info{}, ErrBoardNotFound
	}
	return b[idx], nil
}

// FindByMCU returns the first board built around mcu
func (b Boards) FindByMCU(mcu string) (Info, error) {
	mcu = strings.ToLower(mcu)
	idx := slices.IndexFunc(b, func(info Info) bool {
		return info.MCU == mcu
	})
	if idx < 0 {
		return Info{}, ErrBoardNotFound
	}
	return b[idx], nil
}

// Names lists board names in database order
func (b Boards) Names() []string {
	names := make([]string, len(b))
	for i, info := range b {
		names[i] = info.Name
	}
	return names
}

// Parse decodes a board database document
func Parse(raw []byte) (Boards, error) {
	var doc struct {
		Elements Boards `yaml:"boards"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc.Elements, nil
}

func init() {
	var err error
	if boards, err = Parse(rawBoards); err != nil {
		panic(err)
	}
}
