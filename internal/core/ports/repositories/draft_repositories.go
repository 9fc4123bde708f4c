package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/prompt_books/internal/core/domain"
)

// DraftReader defines read operations for drafts.
type DraftReader interface {
	FindDraftByID(ctx context.Context, tenantID, draftID string) (*domain.Draft, error)

	// ListDrafts returns drafts newest first using token-based pagination.
	// A nil status lists every status.
	ListDrafts(ctx context.Context, tenantID string, status *domain.DraftStatus, limit int, nextToken *string) ([]domain.Draft, *string, error)
}

// DraftWriter defines write operations for drafts.
type DraftWriter interface {
	SaveDraft(ctx context.Context, draft domain.Draft) error

	// UpdateDraft overwrites the mutable fields of a draft if its stored version still equals
	// draft.Version, and bumps the version. A stale version yields apperrors.ErrConflict.
	UpdateDraft(ctx context.Context, draft domain.Draft) error

	// MarkDraftPosted links an approved, not yet posted draft to its journal entry, provided the
	// stored version still equals version. It reports false without error when the draft was
	// already posted, is no longer approved, or was changed after the caller read it.
	MarkDraftPosted(ctx context.Context, tenantID, draftID string, version int64, entryID, userID string, now time.Time) (bool, error)
}

// DraftRepositoryFacade combines all draft-related repository interfaces
type DraftRepositoryFacade interface {
	DraftReader
	DraftWriter
}
