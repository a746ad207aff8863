// Command nmclean finds and optionally deletes node_modules directories.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/idelchi/nmclean/internal/cli"
)

// version is set at build time.
//
//nolint:gochecknoglobals // Set via ldflags
var version = "unknown - unofficial & generated by unknown"

func main() {
	// An interrupt cancels the scan; whatever was found so far is still reported.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.New(version).Command().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
