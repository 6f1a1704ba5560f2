// Command vireyactl calls the Vireya backend API from a terminal.
package main

import (
	"fmt"
	"os"

	"github.com/mokayaj857/vireya/internal/cli"
)

// set via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
