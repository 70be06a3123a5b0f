// Package notify is the best-effort side channel for user notifications.
//
// Workflow transitions fire a notification to the affected user. Delivery is
// never load-bearing: a failed or slow dispatch must not fail, roll back, or
// delay the transition that triggered it. Services depend on BestEffort,
// which swallows and logs every failure; only tests talk to an implementation
// directly.
package notify

import (
	"context"
	"log/slog"

	id "campus/pkg/domain"
)

// Message is a user-facing notification.
type Message struct {
	UserID   id.UserID `json:"user_id"`
	Category string    `json:"category"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
}

// Notifier dispatches a notification to a user.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// BestEffort wraps a Notifier with fire-and-forget semantics. A nil inner
// notifier is valid and drops everything.
type BestEffort struct {
	inner  Notifier
	logger *slog.Logger
}

// NewBestEffort constructs the wrapper services depend on.
func NewBestEffort(inner Notifier, logger *slog.Logger) *BestEffort {
	if logger == nil {
		logger = slog.Default()
	}
	return &BestEffort{inner: inner, logger: logger}
}

// Send dispatches msg, logging any failure instead of returning it.
func (b *BestEffort) Send(ctx context.Context, msg Message) {
	if b == nil || b.inner == nil {
		return
	}
	if err := b.inner.Notify(ctx, msg); err != nil {
		b.logger.WarnContext(ctx, "notification delivery failed",
			"user_id", msg.UserID.String(),
			"category", msg.Category,
			"error", err,
		)
	}
}
