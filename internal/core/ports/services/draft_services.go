package services

import (
	"context"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/dto"
)

// DraftReaderSvc defines read operations for drafts.
type DraftReaderSvc interface {
	GetDraft(ctx context.Context, actor domain.Actor, draftID string) (*domain.Draft, error)
	ListDrafts(ctx context.Context, actor domain.Actor, params dto.ListDraftsParams) ([]domain.Draft, *string, error)
}

// DraftLifecycleSvc drives a draft through draft -> approved -> posted.
type DraftLifecycleSvc interface {
	CreateDraft(ctx context.Context, actor domain.Actor, req dto.CreateDraftRequest) (*domain.Draft, error)

	// EditDraft applies changes; a changed approved draft goes back to draft.
	EditDraft(ctx context.Context, actor domain.Actor, draftID string, req dto.UpdateDraftRequest) (*domain.Draft, error)

	ApproveDraft(ctx context.Context, actor domain.Actor, draftID string) (*domain.Draft, error)

	// PostDraft posts an approved draft and returns the journal entry id.
	PostDraft(ctx context.Context, actor domain.Actor, draftID string) (string, error)
}

// DraftSvcFacade combines all draft-related service interfaces
type DraftSvcFacade interface {
	DraftReaderSvc
	DraftLifecycleSvc
}
