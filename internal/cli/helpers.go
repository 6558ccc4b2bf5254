// Package cli holds the command logic shared by cmd/skein: workflow file
// IO, the live watch loop, and small terminal plumbing.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/avelst/skein/internal/logging"
)

// NewLogger creates the CLI logger from the --log-level flag value.
func NewLogger(level string) *slog.Logger {
	return logging.New(logging.ParseLevel(level))
}

// NewSignalContext returns a context cancelled on SIGINT or SIGTERM.
func NewSignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// printSystemMessage writes an out-of-band message to stdout, visually
// separated from rendered content.
func printSystemMessage(format string, args ...any) {
	fmt.Printf("· "+format+"\n", args...)
}
