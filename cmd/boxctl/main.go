// Command boxctl is a command-line client for a boxd daemon.
package main

import (
	"fmt"
	"os"

	"github.com/sandkasten-run/boxd/cmd/boxctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
