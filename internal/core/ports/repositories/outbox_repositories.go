package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/prompt_books/internal/core/domain"
)

// OutboxRepository stores side effects written alongside ledger rows.
type OutboxRepository interface {
	SaveOutboxEvent(ctx context.Context, event domain.OutboxEvent) error

	// FetchPendingOutboxEvents returns undispatched events with fewer than maxAttempts
	// attempts, oldest first.
	FetchPendingOutboxEvents(ctx context.Context, limit, maxAttempts int) ([]domain.OutboxEvent, error)

	MarkOutboxDispatched(ctx context.Context, eventID string, now time.Time) error

	// MarkOutboxHandlerDelivered records that handler accepted the event, so a retry of the
	// event skips it. Recording the same handler twice is a no-op.
	MarkOutboxHandlerDelivered(ctx context.Context, eventID, handler string) error

	// MarkOutboxFailed increments the attempt counter and records the last error.
	MarkOutboxFailed(ctx context.Context, eventID string, reason string) error

	// DeleteOutboxEvent removes an undispatched event whose ledger write was compensated.
	DeleteOutboxEvent(ctx context.Context, eventID string) error
}
