package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"blinky/core"
	"blinky/host/monitor"
	"blinky/host/serial"
)

var (
	monitorOpts = struct {
		device string
		baud   int
	}{}

	monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "Print trace events streamed by a board",
		Long:  "Open the board's trace UART and print every event it sends until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			serialCfg := serial.DefaultConfig(cfg.Serial.Device)
			serialCfg.Baud = cfg.Serial.Baud
			serialCfg.ReadTimeout = time.Duration(cfg.Serial.ReadTimeout) * time.Millisecond
			if monitorOpts.device != "" {
				serialCfg.Device = monitorOpts.device
			}
			if monitorOpts.baud != 0 {
				serialCfg.Baud = monitorOpts.baud
			}

			m, port, err := monitor.Open(serialCfg)
			if err != nil {
				return err
			}
			defer port.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Listening on %s at %d baud\n", serialCfg.Device, serialCfg.Baud)

			err = m.Run(ctx, func(seq uint8, event core.TraceEvent) {
				fmt.Fprintf(out, "[%2d] %s\n", seq, formatEvent(event))
			})

			stats := m.Stats()
			fmt.Fprintf(out, "frames=%d events=%d discarded=%d lost=%d bad=%d\n",
				stats.Frames, stats.Events, stats.Discarded, stats.Lost, stats.DecodeErrors)

			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
)

func init() {
	monitorCmd.Flags().StringVar(&monitorOpts.device, "device", "", "serial device, overrides the configuration")
	monitorCmd.Flags().IntVar(&monitorOpts.baud, "baud", 0, "baud rate, overrides the configuration")
}

// formatEvent renders an event with its clock as an offset since boot
func formatEvent(event core.TraceEvent) string {
	at := core.TimerToUS(event.Clock)
	ts := time.Duration(at) * time.Microsecond
	switch event.Kind {
	case core.EvtBoot:
		return fmt.Sprintf("%12s boot sysclk=%dMHz", ts, event.Value)
	case core.EvtButtonEdge:
		return fmt.Sprintf("%12s button running=%t", ts, event.Value != 0)
	case core.EvtTimerStart:
		return fmt.Sprintf("%12s timer start period=%dms", ts, event.Value)
	case core.EvtLEDToggle:
		return fmt.Sprintf("%12s led %s", ts, levelName(event.Value != 0))
	default:
		return fmt.Sprintf("%12s %s", ts, event.Name())
	}
}

func levelName(high bool) string {
	if high {
		return "on"
	}
	return "off"
}
