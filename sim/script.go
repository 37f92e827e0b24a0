//go:build !tinygo

package sim

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"blinky/core"
)

// Script is a recorded sequence of stimuli and checks, loaded from YAML:
//
//	board: nucleo-f303re
//	steps:
//	  - action: press
//	  - action: advance
//	    duration: 2500ms
//	  - expect: {mode: active, led: false, changes: 3}
type Script struct {
	Board string `yaml:"board"`
	Steps []Step `yaml:"steps"`
}

// Step is one action, one expectation, or both. The action runs first.
type Step struct {
	Action   string  `yaml:"action"`
	Duration string  `yaml:"duration"` // advance
	Extra    int     `yaml:"extra"`    // bounce
	Expect   *Expect `yaml:"expect"`
}

// Expect checks the blinker after a step. Unset fields are not checked.
type Expect struct {
	Mode    string `yaml:"mode"`
	LED     *bool  `yaml:"led"`
	Timer   *bool  `yaml:"timer"`
	Changes *int   `yaml:"changes"` // LED level changes since power on
}

var ErrUnknownAction = errors.New("unknown script action")

// StepError reports the step a script failed on
type StepError struct {
	Index int
	Step  Step
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Step.describe(), e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (s Step) describe() string {
	switch {
	case s.Action == "":
		return "expect"
	case s.Duration != "":
		return s.Action + " " + s.Duration
	default:
		return s.Action
	}
}

// LoadScript parses a YAML script
func LoadScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, step := range script.Steps {
		if step.Action == "" && step.Expect == nil {
			return nil, &StepError{Index: i, Step: step, Err: errors.New("empty step")}
		}
		if step.Action == "advance" {
			if _, err := time.ParseDuration(step.Duration); err != nil {
				return nil, &StepError{Index: i, Step: step, Err: err}
			}
		}
	}
	return &script, nil
}

// Apply performs a single named stimulus on the board
func (b *Board) Apply(action string, duration time.Duration, extra int) error {
	switch action {
	case "press", "click":
		b.Button.Click()
	case "hold":
		b.Button.Press()
	case "release":
		b.Button.Release()
	case "bounce":
		b.Button.Bounce(extra)
	case "spurious":
		b.spuriousPin().Click()
	case "advance":
		b.Clock.Advance(duration)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return nil
}

// spuriousPin is a second input on the button's shared line
func (b *Board) spuriousPin() *Button {
	if b.other == nil {
		pin := b.Info.Exti.FirstLine
		if pin == b.Button.Pin {
			pin++
		}
		b.other = b.Exti.NewPin("neighbour", pin)
		b.other.TriggerOnEdge(core.EdgeFalling)
		b.other.EnableInterrupt()
	}
	return b.other
}

// RunScript plays a script against an initialized board and stops at the
// first failed expectation
func (b *Board) RunScript(blinker *core.Blinker, script *Script) error {
	for i, step := range script.Steps {
		if step.Action != "" {
			var d time.Duration
			if step.Action == "advance" {
				var err error
				if d, err = time.ParseDuration(step.Duration); err != nil {
					return &StepError{Index: i, Step: step, Err: err}
				}
			}
			if err := b.Apply(step.Action, d, step.Extra); err != nil {
				return &StepError{Index: i, Step: step, Err: err}
			}
		}
		if step.Expect != nil {
			if err := b.check(blinker, step.Expect); err != nil {
				return &StepError{Index: i, Step: step, Err: err}
			}
		}
	}
	return nil
}

func (b *Board) check(blinker *core.Blinker, want *Expect) error {
	got := blinker.Snapshot()
	if !got.Consistent() {
		return fmt.Errorf("inconsistent state %+v", got)
	}
	if want.Mode != "" && got.Mode().String() != want.Mode {
		return fmt.Errorf("mode is %s, expected %s", got.Mode(), want.Mode)
	}
	if want.LED != nil && got.LEDHigh != *want.LED {
		return fmt.Errorf("led is %v, expected %v", got.LEDHigh, *want.LED)
	}
	if want.Timer != nil && got.TimerRunning != *want.Timer {
		return fmt.Errorf("timer running is %v, expected %v", got.TimerRunning, *want.Timer)
	}
	if want.Changes != nil && b.LED.Changes() != *want.Changes {
		return fmt.Errorf("led changed %d times, expected %d", b.LED.Changes(), *want.Changes)
	}
	return nil
}
