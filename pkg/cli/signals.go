package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
// The first signal triggers graceful shutdown through the context; a
// second signal exits the process immediately, so a wedged provider
// subprocess can never hold the gateway hostage.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
		<-sigCh
		fmt.Fprintln(os.Stderr, "forced shutdown")
		os.Exit(1)
	}()

	return ctx
}

// WaitForShutdown blocks until a shutdown signal arrives. Callers that
// manage their own lifecycle use this instead of SetupSignalHandler.
func WaitForShutdown() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	return sigCh
}
