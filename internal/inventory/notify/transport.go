// Package notify delivers alert notifications through an external
// transport. Delivery is best-effort: the engine logs failures and never
// retries.
package notify

import (
	"context"

	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// Transport sends one plain-text message to a destination
type Transport interface {
	Send(ctx context.Context, destination, message string) error
}

// LogTransport writes notifications to the log. Used when no broker is
// configured and as the fallback in development.
type LogTransport struct {
	logger *logger.Logger
}

// NewLogTransport creates a log-backed transport
func NewLogTransport(log *logger.Logger) *LogTransport {
	return &LogTransport{logger: log.WithComponent("notify")}
}

// Send logs the notification
func (t *LogTransport) Send(ctx context.Context, destination, message string) error {
	t.logger.Info().
		Str("destination", destination).
		Str("message", message).
		Msg("notification")
	return nil
}
