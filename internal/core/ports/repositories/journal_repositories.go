package repositories

import (
	"context"

	"github.com/SscSPs/prompt_books/internal/core/domain"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindEntryByID retrieves a journal entry with its lines.
	FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)

	// FindEntryBySourceDraft retrieves the entry created from a draft, or apperrors.ErrNotFound.
	FindEntryBySourceDraft(ctx context.Context, tenantID, draftID string) (*domain.JournalEntry, error)

	// EntryExists reports whether the header row is present.
	EntryExists(ctx context.Context, tenantID, entryID string) (bool, error)

	// ListEntries retrieves headers ordered by entry date then creation time, newest first.
	// It returns the entries, a token for the next page, and an error.
	ListEntries(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// CreateEntry inserts the header only. A second entry for the same source draft
	// yields apperrors.ErrDuplicate.
	CreateEntry(ctx context.Context, entry domain.JournalEntry) error

	// CreateLines inserts the lines of an existing header.
	CreateLines(ctx context.Context, lines []domain.JournalLine) error

	// DeleteEntry removes a header and any lines that reference it.
	DeleteEntry(ctx context.Context, tenantID, entryID string) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
