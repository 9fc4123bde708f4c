package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	"github.com/SscSPs/prompt_books/internal/models"
	"github.com/SscSPs/prompt_books/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxOutboxRepository struct {
	BaseRepository
}

func newPgxOutboxRepository(pool *pgxpool.Pool) portsrepo.OutboxRepository {
	return &PgxOutboxRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.OutboxRepository = (*PgxOutboxRepository)(nil)

func (r *PgxOutboxRepository) SaveOutboxEvent(ctx context.Context, event domain.OutboxEvent) error {
	m := mapping.ToModelOutboxEvent(event)
	_, err := r.DB(ctx).Exec(ctx, `
		INSERT INTO outbox_events (event_id, tenant_id, topic, aggregate_id, payload, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		m.EventID, m.TenantID, m.Topic, m.AggregateID, m.Payload, m.Attempts, m.CreatedAt)
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: outbox event %s already exists", apperrors.ErrDuplicate, m.EventID)
		}
		return fmt.Errorf("failed to save outbox event %s: %w", m.EventID, err)
	}
	return nil
}

// FetchPendingOutboxEvents reads a batch of undispatched events oldest first.
func (r *PgxOutboxRepository) FetchPendingOutboxEvents(ctx context.Context, limit, maxAttempts int) ([]domain.OutboxEvent, error) {
	rows, err := r.DB(ctx).Query(ctx, `
		SELECT event_id, tenant_id, topic, aggregate_id, payload, attempts, last_error, delivered_to, created_at, dispatched_at
		FROM outbox_events
		WHERE dispatched_at IS NULL AND attempts < $1
		ORDER BY created_at, event_id
		LIMIT $2;`, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending outbox events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.OutboxEvent, 0, limit)
	for rows.Next() {
		var m models.OutboxEvent
		if err := rows.Scan(&m.EventID, &m.TenantID, &m.Topic, &m.AggregateID, &m.Payload,
			&m.Attempts, &m.LastError, &m.DeliveredTo, &m.CreatedAt, &m.DispatchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		events = append(events, mapping.ToDomainOutboxEvent(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox rows: %w", err)
	}
	return events, nil
}

func (r *PgxOutboxRepository) MarkOutboxDispatched(ctx context.Context, eventID string, now time.Time) error {
	tag, err := r.DB(ctx).Exec(ctx,
		`UPDATE outbox_events SET dispatched_at = $2, last_error = NULL WHERE event_id = $1;`, eventID, now)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event %s dispatched: %w", eventID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxOutboxRepository) MarkOutboxHandlerDelivered(ctx context.Context, eventID, handler string) error {
	tag, err := r.DB(ctx).Exec(ctx, `
		UPDATE outbox_events
		SET delivered_to = CASE WHEN $2 = ANY(delivered_to) THEN delivered_to ELSE array_append(delivered_to, $2) END
		WHERE event_id = $1;`, eventID, handler)
	if err != nil {
		return fmt.Errorf("failed to record delivery of outbox event %s to %s: %w", eventID, handler, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxOutboxRepository) MarkOutboxFailed(ctx context.Context, eventID string, reason string) error {
	tag, err := r.DB(ctx).Exec(ctx,
		`UPDATE outbox_events SET attempts = attempts + 1, last_error = $2 WHERE event_id = $1;`, eventID, reason)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event %s failed: %w", eventID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxOutboxRepository) DeleteOutboxEvent(ctx context.Context, eventID string) error {
	tag, err := r.DB(ctx).Exec(ctx,
		`DELETE FROM outbox_events WHERE event_id = $1 AND dispatched_at IS NULL;`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete outbox event %s: %w", eventID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
