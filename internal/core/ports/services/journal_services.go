package services

import (
	"context"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/dto"
)

// PostingSvc writes balanced entries to the ledger.
type PostingSvc interface {
	// PostApprovedDraft turns an approved draft into a posted journal entry.
	// Calling it again for the same draft returns the same entry id.
	PostApprovedDraft(ctx context.Context, actor domain.Actor, draftID string) (string, error)

	// CreateManualJournalEntry posts a hand-entered balanced entry.
	CreateManualJournalEntry(ctx context.Context, actor domain.Actor, req dto.ManualJournalRequest) (*domain.JournalEntry, error)
}

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetJournalEntry retrieves an entry with its lines.
	GetJournalEntry(ctx context.Context, actor domain.Actor, entryID string) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves a page of entry headers.
	ListJournalEntries(ctx context.Context, actor domain.Actor, params dto.ListJournalsParams) ([]domain.JournalEntry, *string, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	PostingSvc
	JournalReaderSvc
}
