//go:build linux

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"blinky/core"
	"blinky/host/gpioboard"
)

var (
	gpioOpts = struct {
		chip     string
		led      int
		button   int
		debounce time.Duration
	}{}

	gpioCmd = &cobra.Command{
		Use:   "gpio",
		Short: "Run the blinker on a Linux board's GPIO lines",
		Long:  "Drive a real LED and button through the GPIO character device until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			boardCfg := gpioboard.Config{
				Chip:     cfg.GPIO.Chip,
				LED:      cfg.GPIO.LED,
				Button:   cfg.GPIO.Button,
				Debounce: time.Duration(cfg.GPIO.DebounceMS) * time.Millisecond,
			}
			flags := cmd.Flags()
			if flags.Changed("chip") {
				boardCfg.Chip = gpioOpts.chip
			}
			if flags.Changed("led") {
				boardCfg.LED = gpioOpts.led
			}
			if flags.Changed("button") {
				boardCfg.Button = gpioOpts.button
			}
			if flags.Changed("debounce") {
				boardCfg.Debounce = gpioOpts.debounce
			}

			out := cmd.OutOrStdout()
			core.SetDebugWriter(func(msg string) {
				fmt.Fprintln(out, msg)
			})
			core.SetDebugEnabled(rootOpts.debug || cfg.Trace.Debug)
			if cfg.Trace.Events {
				core.SetTraceSink(func(event core.TraceEvent) {
					fmt.Fprintln(out, formatEvent(event))
				})
				defer core.SetTraceSink(nil)
			}

			board, err := gpioboard.Open(boardCfg)
			if err != nil {
				return err
			}
			defer board.PowerOff()

			if _, err := core.Init(board, cfg.Clocks.ClockConfig()); err != nil {
				return err
			}
			fmt.Fprintf(out, "LED on %s:%d, button on %s:%d\n", boardCfg.Chip, boardCfg.LED, boardCfg.Chip, boardCfg.Button)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				board.PowerOff()
			}()

			for board.WaitForInterrupt() {
			}
			if cfg.Trace.DumpOnExit {
				core.DumpTraceRing()
			}
			return board.LEDErr()
		},
	}
)

func init() {
	gpioCmd.Flags().StringVar(&gpioOpts.chip, "chip", "gpiochip0", "GPIO chip")
	gpioCmd.Flags().IntVar(&gpioOpts.led, "led", 17, "LED line offset")
	gpioCmd.Flags().IntVar(&gpioOpts.button, "button", 27, "button line offset")
	gpioCmd.Flags().DurationVar(&gpioOpts.debounce, "debounce", 0, "kernel debounce period, 0 for none")

	rootCmd.AddCommand(gpioCmd)
}
