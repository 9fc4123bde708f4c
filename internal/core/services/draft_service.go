package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prompt_books/internal/core/ports/services"
	"github.com/SscSPs/prompt_books/internal/dto"
	"github.com/SscSPs/prompt_books/internal/utils/accounting"
	"github.com/SscSPs/prompt_books/internal/utils/ids"
	"github.com/SscSPs/prompt_books/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const entityDraft = "draft"

// draftService owns the draft state machine: draft -> approved -> posted, with
// approved -> draft on any content edit. Posted is terminal.
type draftService struct {
	BaseService
	draftRepo portsrepo.DraftRepositoryFacade
	poster    portssvc.PostingSvc
	audit     portssvc.AuditRecorder
}

// NewDraftService creates the draft lifecycle manager.
func NewDraftService(draftRepo portsrepo.DraftRepositoryFacade, poster portssvc.PostingSvc, audit portssvc.AuditRecorder) portssvc.DraftSvcFacade {
	return &draftService{draftRepo: draftRepo, poster: poster, audit: audit}
}

var _ portssvc.DraftSvcFacade = (*draftService)(nil)

func (s *draftService) CreateDraft(ctx context.Context, actor domain.Actor, req dto.CreateDraftRequest) (*domain.Draft, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.Role.CanEdit, "create drafts"); err != nil {
		return nil, err
	}
	if !req.Intent.IsValid() {
		return nil, fmt.Errorf("%w: unknown intent %q", ErrInvalidDraftPayload, req.Intent)
	}

	now := s.Now()
	entities, err := normalizeEntities(req.Entities, now)
	if err != nil {
		return nil, err
	}
	confidence := decimal.Zero
	if req.Confidence != nil {
		confidence = *req.Confidence
	}
	if err := validateConfidence(confidence); err != nil {
		return nil, err
	}

	draft := domain.Draft{
		DraftID:     ids.NewUUID(),
		TenantID:    actor.TenantID,
		Intent:      req.Intent,
		Entities:    entities,
		Status:      domain.DraftStatusDraft,
		Confidence:  confidence,
		Version:     1,
		AuditFields: domain.NewAuditFields(actor.UserID, now),
	}
	if err := s.draftRepo.SaveDraft(ctx, draft); err != nil {
		s.LogError(ctx, err, "Failed to save draft", slog.String("draft_id", draft.DraftID))
		return nil, err
	}

	s.audit.Record(ctx, actor, domain.AuditDraftCreated, entityDraft, draft.DraftID, map[string]any{
		"intent":     string(draft.Intent),
		"amount":     draft.Entities.Amount.StringFixed(accounting.MoneyPlaces),
		"confidence": draft.Confidence.String(),
	})
	s.LogInfo(ctx, "Draft created", slog.String("draft_id", draft.DraftID), slog.String("intent", string(draft.Intent)))
	return &draft, nil
}

func (s *draftService) GetDraft(ctx context.Context, actor domain.Actor, draftID string) (*domain.Draft, error) {
	if err := s.AuthorizeActor(ctx, actor, canRead, "read drafts"); err != nil {
		return nil, err
	}
	return s.draftRepo.FindDraftByID(ctx, actor.TenantID, draftID)
}

func (s *draftService) ListDrafts(ctx context.Context, actor domain.Actor, params dto.ListDraftsParams) ([]domain.Draft, *string, error) {
	if err := s.AuthorizeActor(ctx, actor, canRead, "read drafts"); err != nil {
		return nil, nil, err
	}
	drafts, next, err := s.draftRepo.ListDrafts(ctx, actor.TenantID, params.Status, pagination.ClampLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list drafts", slog.String("tenant_id", actor.TenantID))
		return nil, nil, err
	}
	return drafts, next, nil
}

// EditDraft applies the requested changes. A posted draft is never touched. An edit that
// changes nothing is a no-op; any real change on an approved draft clears the approval.
func (s *draftService) EditDraft(ctx context.Context, actor domain.Actor, draftID string, req dto.UpdateDraftRequest) (*domain.Draft, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.Role.CanEdit, "edit drafts"); err != nil {
		return nil, err
	}
	draft, err := s.draftRepo.FindDraftByID(ctx, actor.TenantID, draftID)
	if err != nil {
		return nil, err
	}
	if draft.IsPosted() {
		s.LogWarn(ctx, "Edit rejected on posted draft", slog.String("draft_id", draftID))
		return nil, fmt.Errorf("%w (draft %s)", ErrDraftPosted, draftID)
	}
	if req.Version != nil && *req.Version != draft.Version {
		return nil, fmt.Errorf("%w: draft %s is at version %d, edit was based on %d", ErrStaleDraftVersion, draftID, draft.Version, *req.Version)
	}

	updated := *draft
	if req.Intent != nil {
		if !req.Intent.IsValid() {
			return nil, fmt.Errorf("%w: unknown intent %q", ErrInvalidDraftPayload, *req.Intent)
		}
		updated.Intent = *req.Intent
	}
	if req.Entities != nil {
		entities, err := normalizeEntities(*req.Entities, draft.CreatedAt)
		if err != nil {
			return nil, err
		}
		updated.Entities = entities
	}
	if req.Confidence != nil {
		if err := validateConfidence(*req.Confidence); err != nil {
			return nil, err
		}
		updated.Confidence = *req.Confidence
	}

	changes := diffDraft(draft, &updated)
	if len(changes) == 0 {
		return draft, nil
	}

	statusBefore := updated.Status
	updated.InvalidateApproval()
	now := s.Now()
	updated.Touch(actor.UserID, now)

	if err := s.draftRepo.UpdateDraft(ctx, updated); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: draft %s", ErrStaleDraftVersion, draftID)
		}
		s.LogError(ctx, err, "Failed to update draft", slog.String("draft_id", draftID))
		return nil, err
	}
	updated.Version++

	changes["status"] = map[string]any{"from": string(statusBefore), "to": string(updated.Status)}
	s.audit.Record(ctx, actor, domain.AuditDraftUpdated, entityDraft, draftID, changes)
	s.LogInfo(ctx, "Draft updated",
		slog.String("draft_id", draftID),
		slog.String("status", string(updated.Status)))
	return &updated, nil
}

// ApproveDraft moves a draft to approved. Approving an approved draft returns it unchanged.
func (s *draftService) ApproveDraft(ctx context.Context, actor domain.Actor, draftID string) (*domain.Draft, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.Role.CanApprove, "approve drafts"); err != nil {
		return nil, err
	}
	draft, err := s.draftRepo.FindDraftByID(ctx, actor.TenantID, draftID)
	if err != nil {
		return nil, err
	}
	switch {
	case draft.IsPosted():
		return nil, fmt.Errorf("%w (draft %s, entry %s)", ErrDraftAlreadyPosted, draftID, derefOr(draft.PostedEntryID, "unknown"))
	case draft.Status == domain.DraftStatusApproved:
		return draft, nil
	}

	draft.Approve(actor.UserID, s.Now())
	if err := s.draftRepo.UpdateDraft(ctx, *draft); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: draft %s", ErrStaleDraftVersion, draftID)
		}
		s.LogError(ctx, err, "Failed to approve draft", slog.String("draft_id", draftID))
		return nil, err
	}
	draft.Version++

	s.audit.Record(ctx, actor, domain.AuditDraftApproved, entityDraft, draftID, map[string]any{
		"approved_by": actor.UserID,
		"approved_at": draft.ApprovedAt,
	})
	s.LogInfo(ctx, "Draft approved", slog.String("draft_id", draftID))
	return draft, nil
}

func (s *draftService) PostDraft(ctx context.Context, actor domain.Actor, draftID string) (string, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.Role.CanApprove, "post drafts"); err != nil {
		return "", err
	}
	return s.poster.PostApprovedDraft(ctx, actor, draftID)
}

// normalizeEntities trims text fields, upper-cases the currency and defaults the date.
func normalizeEntities(e domain.DraftEntities, defaultDate time.Time) (domain.DraftEntities, error) {
	if e.Amount.IsNegative() {
		return e, fmt.Errorf("%w: amount must not be negative, got %s", ErrInvalidDraftPayload, e.Amount)
	}
	if e.Tax != nil {
		if e.Tax.Rate != nil && e.Tax.Rate.IsNegative() {
			return e, fmt.Errorf("%w: tax rate must not be negative", ErrInvalidDraftPayload)
		}
		if e.Tax.Amount != nil && e.Tax.Amount.IsNegative() {
			return e, fmt.Errorf("%w: tax amount must not be negative", ErrInvalidDraftPayload)
		}
	}
	e.Currency = strings.ToUpper(strings.TrimSpace(e.Currency))
	if e.Currency != "" && len(e.Currency) != 3 {
		return e, fmt.Errorf("%w: currency must be a 3-letter code, got %q", ErrInvalidDraftPayload, e.Currency)
	}
	e.Counterparty = strings.TrimSpace(e.Counterparty)
	e.Description = strings.TrimSpace(e.Description)
	e.DocumentNumber = strings.TrimSpace(e.DocumentNumber)
	if e.Date.IsZero() {
		e.Date = defaultDate
	}
	y, m, d := e.Date.Date()
	e.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return e, nil
}

func validateConfidence(c decimal.Decimal) error {
	if c.IsNegative() || c.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: confidence must be between 0 and 1, got %s", ErrInvalidDraftPayload, c)
	}
	return nil
}

// diffDraft returns {"field": {"from": old, "to": new}} for every content field that changed.
func diffDraft(before, after *domain.Draft) map[string]any {
	changes := map[string]any{}
	if before.Intent != after.Intent {
		changes["intent"] = map[string]any{"from": string(before.Intent), "to": string(after.Intent)}
	}
	if !before.Confidence.Equal(after.Confidence) {
		changes["confidence"] = map[string]any{"from": before.Confidence.String(), "to": after.Confidence.String()}
	}
	b, errB := json.Marshal(before.Entities)
	a, errA := json.Marshal(after.Entities)
	if errB != nil || errA != nil || string(a) != string(b) {
		changes["entities"] = map[string]any{"from": before.Entities, "to": after.Entities}
	}
	return changes
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
