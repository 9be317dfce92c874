// Command circulation runs the library circulation engine from the command line.
//
// Every subcommand opens the configured store, runs one engine operation and prints the result as JSON.
// The sweep subcommand keeps running and expires elapsed pickups periodically.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const (
	exitFailure = 1
	exitRefused = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates business refusals (the library said no) from failures.
func exitCode(err error) int {
	var domainErr *core.Error
	if errors.As(err, &domainErr) {
		return exitRefused
	}

	return exitFailure
}
