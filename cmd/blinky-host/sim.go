package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blinky/boards"
	"blinky/core"
	"blinky/sim"
)

var (
	simOpts = struct {
		board  string
		script string
		trace  bool
		dump   bool
	}{}

	simCmd = &cobra.Command{
		Use:   "sim",
		Short: "Run the blinker on a simulated board",
		Long: "Boot the blinker on a modelled board and drive it from an interactive console, " +
			"or play a YAML script of button presses, time steps and expectations.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var script *sim.Script
			if simOpts.script != "" {
				data, err := os.ReadFile(simOpts.script)
				if err != nil {
					return fmt.Errorf("failed to read script: %w", err)
				}
				if script, err = sim.LoadScript(data); err != nil {
					return err
				}
			}

			name := cfg.Board
			if script != nil && script.Board != "" {
				name = script.Board
			}
			if simOpts.board != "" {
				name = simOpts.board
			}
			info, err := boards.All().Find(name)
			if err != nil {
				return fmt.Errorf("%w: %s", err, name)
			}

			// Without a configuration file every bus runs at the board's limit
			req := info.Clocks.Request()
			if rootOpts.config != "" {
				req = cfg.Clocks.ClockConfig()
			}

			out := cmd.OutOrStdout()
			core.SetDebugWriter(func(msg string) {
				fmt.Fprintln(out, msg)
			})
			core.SetDebugEnabled(rootOpts.debug || cfg.Trace.Debug)
			if simOpts.trace || cfg.Trace.Events {
				core.SetTraceSink(func(event core.TraceEvent) {
					fmt.Fprintln(out, formatEvent(event))
				})
				defer core.SetTraceSink(nil)
			}

			board := sim.NewBoard(info)
			defer board.PowerOff()

			core.ClearTraceRing()
			blinker, err := core.Init(board, req)
			if err != nil {
				return err
			}

			if simOpts.dump || cfg.Trace.DumpOnExit {
				defer core.DumpTraceRing()
			}

			if script != nil {
				if err := board.RunScript(blinker, script); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d steps passed on %s\n", simOpts.script, len(script.Steps), info.Name)
				return nil
			}

			c := newConsole(board, blinker, out)
			c.prompt = true
			fmt.Fprintf(out, "Simulating %s (%s). Type 'help' for commands.\n", info.Name, info.MCU)
			return c.run(cmd.InOrStdin())
		},
	}
)

func init() {
	simCmd.Flags().StringVarP(&simOpts.board, "board", "b", "", "board name or alias, overrides the configuration")
	simCmd.Flags().StringVarP(&simOpts.script, "script", "s", "", "YAML script to play instead of the console")
	simCmd.Flags().BoolVarP(&simOpts.trace, "trace", "t", false, "print trace events as they happen")
	simCmd.Flags().BoolVar(&simOpts.dump, "dump", false, "dump the trace ring on exit")
}
