package main

import (
	"github.com/spf13/cobra"

	"blinky/config"
)

var (
	rootOpts = struct {
		config string
		debug  bool
	}{}

	rootCmd = &cobra.Command{
		Use:           "blinky-host",
		Short:         "Host tools for the button-controlled blinker",
		Long:          "Simulate the blinker on a modelled board, or capture the trace stream a real board sends over its UART.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.config, "config", "c", "", "JSON configuration file")
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.debug, "debug", "d", false, "print debug messages")

	rootCmd.AddCommand(boardsCmd, simCmd, monitorCmd)
}

// loadConfig reads --config, falling back to defaults when it is not set
func loadConfig() (*config.Config, error) {
	if rootOpts.config == "" {
		return config.Default(), nil
	}
	return config.LoadFile(rootOpts.config)
}
