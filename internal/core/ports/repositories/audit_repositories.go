package repositories

import (
	"context"

	"github.com/SscSPs/prompt_books/internal/core/domain"
)

// AuditFilter narrows an audit listing. Empty fields match everything.
type AuditFilter struct {
	Entity   string
	EntityID string
}

// AuditRepository is the append-only store of audit events.
type AuditRepository interface {
	SaveAuditEvent(ctx context.Context, event domain.AuditEvent) error

	// ListAuditEvents returns events newest first using token-based pagination.
	ListAuditEvents(ctx context.Context, tenantID string, filter AuditFilter, limit int, nextToken *string) ([]domain.AuditEvent, *string, error)
}
