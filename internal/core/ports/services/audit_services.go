package services

import (
	"context"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/dto"
)

// AuditRecorder appends audit events. Failures are logged, never returned.
type AuditRecorder interface {
	Record(ctx context.Context, actor domain.Actor, action, entity, entityID string, changes map[string]any)
}

// AuditSvcFacade adds the read path to the recorder.
type AuditSvcFacade interface {
	AuditRecorder
	ListAuditEvents(ctx context.Context, actor domain.Actor, params dto.ListAuditParams) ([]domain.AuditEvent, *string, error)
}
