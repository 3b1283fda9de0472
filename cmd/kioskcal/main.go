package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"kioskcal/internal/cli"
	appLog "kioskcal/internal/log"
)

var (
	version = "0.1.0-dev"
	commit  = ""
)

func main() {
	cli.SetVersion(version, commit)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		appLog.Error("kioskcal failed", err)
		os.Exit(1)
	}
}
