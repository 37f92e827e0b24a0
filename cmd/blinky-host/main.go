// Command blinky-host drives the blinker without hardware and decodes the
// trace stream of a real board.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
