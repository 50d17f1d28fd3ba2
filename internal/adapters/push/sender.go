// Package push holds the outbound Web Push boundary. Actual delivery is
// handled by an external service; this adapter only records the handoff.
package push

import (
	"context"
	"log/slog"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// LogSender logs push handoffs instead of delivering them. Used until the
// delivery service is wired in; notifications still land in the inbox and
// on the event bus regardless.
type LogSender struct{}

// NewLogSender creates a new LogSender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send records the would-be delivery.
func (s *LogSender) Send(ctx context.Context, sub *domain.PushSubscription, title, body string) error {
	slog.Info("push handoff",
		"user_id", sub.UserID,
		"endpoint", sub.Endpoint,
		"title", title,
	)
	return nil
}
