// Ruinscript runs coroutine event scripts against a small town simulation.
// Usage: ruinscript [--config file] <play|serve|check|runs> ...
package main

import (
	"context"
	"fmt"
	"os"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
