package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// shutdownSignals are the signals that start a graceful shutdown.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// WithSignal returns a context canceled on SIGINT or SIGTERM. The returned
// stop function releases the signal handler; a second signal after stop
// terminates the process with the default behavior.
func WithSignal(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, shutdownSignals...)
}
