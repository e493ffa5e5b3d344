// Practica Link - document upload client for the Practica tax platform
package main

import (
	"os"

	"github.com/practica/practica-link/internal/cli"
)

// Version information - injected via LDFLAGS on release builds
var (
	Version   = "v1.2.0"
	BuildTime = "2026-08-31"
)

func main() {
	cli.Version = Version
	cli.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
