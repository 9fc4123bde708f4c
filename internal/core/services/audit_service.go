package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prompt_books/internal/core/ports/services"
	"github.com/SscSPs/prompt_books/internal/dto"
	"github.com/SscSPs/prompt_books/internal/platform/metrics"
	"github.com/SscSPs/prompt_books/internal/utils/ids"
	"github.com/SscSPs/prompt_books/internal/utils/pagination"
)

// auditService writes the audit trail after the ledger mutation it describes.
// Writes are best-effort: a failure is logged and counted but never reaches the caller.
type auditService struct {
	BaseService
	auditRepo portsrepo.AuditRepository
	metrics   *metrics.Metrics
}

// NewAuditService creates the audit recorder and reader.
func NewAuditService(repo portsrepo.AuditRepository, m *metrics.Metrics) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: repo, metrics: m}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

func (s *auditService) Record(ctx context.Context, actor domain.Actor, action, entity, entityID string, changes map[string]any) {
	if changes == nil {
		changes = map[string]any{}
	}
	event := domain.AuditEvent{
		EventID:   ids.NewUUID(),
		TenantID:  actor.TenantID,
		ActorID:   actor.UserID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Changes:   changes,
		CreatedAt: s.Now(),
	}
	// The mutation is already durable; a cancelled request must not drop its audit row.
	if err := s.auditRepo.SaveAuditEvent(context.WithoutCancel(ctx), event); err != nil {
		s.metrics.IncAuditFailure()
		s.LogError(ctx, err, "Failed to write audit event",
			slog.String("action", action),
			slog.String("entity", entity),
			slog.String("entity_id", entityID))
	}
}

func (s *auditService) ListAuditEvents(ctx context.Context, actor domain.Actor, params dto.ListAuditParams) ([]domain.AuditEvent, *string, error) {
	if err := s.AuthorizeActor(ctx, actor, canRead, "read the audit trail"); err != nil {
		return nil, nil, err
	}
	filter := portsrepo.AuditFilter{Entity: params.Entity, EntityID: params.EntityID}
	events, next, err := s.auditRepo.ListAuditEvents(ctx, actor.TenantID, filter, pagination.ClampLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list audit events", slog.String("tenant_id", actor.TenantID))
		return nil, nil, err
	}
	return events, next, nil
}
