package pgsql

import (
	"context"
	"fmt"
	"strconv"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	"github.com/SscSPs/prompt_books/internal/models"
	"github.com/SscSPs/prompt_books/internal/utils/mapping"
	"github.com/SscSPs/prompt_books/internal/utils/pagination"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

// SaveAuditEvent appends one audit row.
func (r *PgxAuditRepository) SaveAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	m, err := mapping.ToModelAuditLog(event)
	if err != nil {
		return err
	}
	_, err = r.DB(ctx).Exec(ctx, `
		INSERT INTO audit_logs (event_id, tenant_id, actor_id, action, entity, entity_id, changes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		m.EventID, m.TenantID, m.ActorID, m.Action, m.Entity, m.EntityID, m.Changes, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save audit event %s: %w", m.Action, err)
	}
	return nil
}

// ListAuditEvents pages through audit rows newest first.
func (r *PgxAuditRepository) ListAuditEvents(ctx context.Context, tenantID string, filter portsrepo.AuditFilter, limit int, nextToken *string) ([]domain.AuditEvent, *string, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	fetchLimit := limit + 1

	query := `SELECT event_id, tenant_id, actor_id, action, entity, entity_id, changes, created_at
		FROM audit_logs WHERE tenant_id = $1`
	args := []any{tenantID}
	if filter.Entity != "" {
		args = append(args, filter.Entity)
		query += ` AND entity = $` + strconv.Itoa(len(args))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		query += ` AND entity_id = $` + strconv.Itoa(len(args))
	}
	if nextToken != nil && *nextToken != "" {
		_, lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", fmt.Errorf("%w: %v", apperrors.ErrValidation, decodeErr))
		}
		args = append(args, lastCreatedAt, lastID)
		query += ` AND (created_at, event_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}
	args = append(args, fetchLimit)
	query += ` ORDER BY created_at DESC, event_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query audit events for tenant "+tenantID, err)
	}
	defer rows.Close()

	events := make([]domain.AuditEvent, 0, fetchLimit)
	for rows.Next() {
		var m models.AuditLog
		if err := rows.Scan(&m.EventID, &m.TenantID, &m.ActorID, &m.Action, &m.Entity, &m.EntityID, &m.Changes, &m.CreatedAt); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan audit row", err)
		}
		ev, err := mapping.ToDomainAuditEvent(m)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating audit rows", err)
	}

	var nextTokenVal *string
	if len(events) > limit {
		last := events[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.CreatedAt, last.EventID)
		nextTokenVal = &token
		events = events[:limit]
	}
	return events, nextTokenVal, nil
}
