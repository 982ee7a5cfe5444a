package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/RyanBlaney/timbre-match/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.Error(err, "Command failed")
		stop()
		os.Exit(1)
	}
}
