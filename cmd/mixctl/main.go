// Package main provides mixctl, a terminal front end for the hookah mix catalog.
//
// Usage:
//
//	mixctl [flags] <command> [args]
//
// Run without a command to list what is available. Flags are described by
// mixctl -h and can also be set through the environment or a .env file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hookahmix/miniapp/internal/di"
	"github.com/hookahmix/miniapp/internal/di/providers"
)

func main() {
	term := &providers.Terminal{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}

	// Create DI container
	injector := di.NewContainer(os.Args[1:], term, nil)

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := 0
	if err := run(ctx, injector, term); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code = 1
	}
	stop()

	// The snapshot cache saves the store as part of shutdown.
	if err := di.Shutdown(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
	}
	os.Exit(code)
}
