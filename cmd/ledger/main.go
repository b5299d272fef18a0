package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/ledger_engine/internal/commands"
)

func main() {
	// Cancelling the context releases any hold the current command is waiting on.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commands.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
