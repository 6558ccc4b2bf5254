// Package notify delivers the terminal-status side effect as an OS
// notification. Delivery is gated: nothing fires until the user has
// interacted once and the host enabled the notifier, mirroring how
// notification permission is obtained lazily in the browser build.
package notify

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gen2brain/beeep"

	"github.com/avelst/skein/internal/logging"
	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/ports"
)

// Desktop sends OS notifications.
type Desktop struct {
	enabled atomic.Bool
	logger  *slog.Logger
}

var _ ports.Notifier = (*Desktop)(nil)

// Option configures the Desktop notifier.
type Option func(*Desktop)

// WithLogger configures a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Desktop) {
		d.logger = logger
	}
}

// NewDesktop creates a disabled Desktop notifier.
func NewDesktop(opts ...Option) *Desktop {
	d := &Desktop{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enable arms delivery. Call it on first user interaction.
func (d *Desktop) Enable() {
	d.enabled.Store(true)
}

// Notify shows an OS notification, or silently drops it while disabled.
func (d *Desktop) Notify(title, message string) error {
	if !d.enabled.Load() {
		d.logger.Debug("notification suppressed, notifier disabled", "title", title)
		return nil
	}
	if err := beeep.Notify(title, message, ""); err != nil {
		return fmt.Errorf("failed to show notification: %w", err)
	}
	return nil
}

// Log is a Notifier that only writes to the log. Used headless and in
// tests.
type Log struct {
	Logger *slog.Logger
}

var _ ports.Notifier = (*Log)(nil)

// Notify logs the notification.
func (l *Log) Notify(title, message string) error {
	l.Logger.Info("notification", "title", title, "message", message)
	return nil
}

// RunMessage renders the standard title and body for a terminal status.
func RunMessage(status domain.RunStatus) (title, message string) {
	if status.Status == domain.RunError {
		return "Workflow failed", fmt.Sprintf("Run %s stopped: %s", status.RunID, status.Error)
	}
	return "Workflow finished", fmt.Sprintf("Run %s completed %d steps", status.RunID, status.Progress)
}
