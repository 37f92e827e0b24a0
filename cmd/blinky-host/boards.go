package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"blinky/boards"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List supported boards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, info := range boards.All() {
			fmt.Fprintf(out, "%-14s %-12s led=%s button=%s line=%s/%d timer=%s/%d",
				info.Name, info.MCU,
				info.LED.Name, info.Button.Name,
				info.Exti.Name, info.Exti.IRQ,
				info.Timer.Name, info.Timer.IRQ)
			if len(info.Aliases) > 0 {
				fmt.Fprintf(out, " aliases=%s", strings.Join(info.Aliases, ","))
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}
