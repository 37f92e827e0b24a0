package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/shlex"

	"blinky/core"
	"blinky/sim"
)

var errUsage = errors.New("usage")

// console is the line-oriented front end of the simulator
type console struct {
	board   *sim.Board
	blinker *core.Blinker
	out     io.Writer
	prompt  bool
}

func newConsole(board *sim.Board, blinker *core.Blinker, out io.Writer) *console {
	return &console{board: board, blinker: blinker, out: out}
}

// run executes lines from in until quit or end of input
func (c *console) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if c.prompt {
			fmt.Fprint(c.out, "> ")
		}
		if !scanner.Scan() {
			break
		}

		quit, err := c.exec(scanner.Text())
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			continue
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

// exec runs one command line and reports whether the console should exit
func (c *console) exec(line string) (bool, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return false, err
	}
	if len(args) == 0 {
		return false, nil
	}

	switch args[0] {
	case "quit", "exit", "q":
		return true, nil

	case "help", "?":
		c.printHelp()

	case "status", "s":
		c.printStatus()

	case "trace":
		for _, event := range core.TraceRing() {
			fmt.Fprintln(c.out, formatEvent(event))
		}

	case "history":
		for _, level := range c.board.LED.History() {
			fmt.Fprintf(c.out, "%12s led %s\n", level.At, levelName(level.High))
		}

	case "advance", "a":
		if len(args) != 2 {
			return false, fmt.Errorf("%w: advance <duration>", errUsage)
		}
		d, err := time.ParseDuration(args[1])
		if err != nil {
			return false, err
		}
		return false, c.board.Apply("advance", d, 0)

	case "bounce":
		extra := 1
		if len(args) > 1 {
			if extra, err = strconv.Atoi(args[1]); err != nil || extra < 0 {
				return false, fmt.Errorf("%w: bounce [extra edges]", errUsage)
			}
		}
		return false, c.board.Apply("bounce", 0, extra)

	case "script":
		if len(args) != 2 {
			return false, fmt.Errorf("%w: script <file.yaml>", errUsage)
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return false, err
		}
		script, err := sim.LoadScript(data)
		if err != nil {
			return false, err
		}
		if err := c.board.RunScript(c.blinker, script); err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "%d steps passed\n", len(script.Steps))

	default:
		return false, c.board.Apply(args[0], 0, 0)
	}
	return false, nil
}

func (c *console) printStatus() {
	snap := c.blinker.Snapshot()
	fmt.Fprintf(c.out, "t=%s mode=%s led=%s timer=%t changes=%d\n",
		c.board.Clock.Now(), snap.Mode(), levelName(snap.LEDHigh), snap.TimerRunning, c.board.LED.Changes())
}

func (c *console) printHelp() {
	fmt.Fprintln(c.out, "Available commands:")
	fmt.Fprintln(c.out, "  press              - Press and release the button")
	fmt.Fprintln(c.out, "  hold / release     - Drive the button low or let it go")
	fmt.Fprintln(c.out, "  bounce [n]         - Press with n extra contact bounces")
	fmt.Fprintln(c.out, "  spurious           - Fire another pin on the button's interrupt line")
	fmt.Fprintln(c.out, "  advance <duration> - Move simulated time forward, e.g. 2.5s")
	fmt.Fprintln(c.out, "  status             - Show mode, LED and timer")
	fmt.Fprintln(c.out, "  history            - Show every LED level change")
	fmt.Fprintln(c.out, "  trace              - Show the trace ring")
	fmt.Fprintln(c.out, "  script <file>      - Play a YAML script")
	fmt.Fprintln(c.out, "  quit               - Exit")
}
