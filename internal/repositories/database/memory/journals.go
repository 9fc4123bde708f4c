package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
)

func (s *Store) FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryID]
	if !ok || e.TenantID != tenantID {
		return nil, apperrors.ErrNotFound
	}
	e.Lines = append([]domain.JournalLine(nil), s.lines[entryID]...)
	return &e, nil
}

func (s *Store) FindEntryBySourceDraft(ctx context.Context, tenantID, draftID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.TenantID == tenantID && e.SourceDraftID != nil && *e.SourceDraftID == draftID {
			e.Lines = append([]domain.JournalLine(nil), s.lines[e.EntryID]...)
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) EntryExists(ctx context.Context, tenantID, entryID string) (bool, error) {
	if err := s.enter(OpEntryExists); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryID]
	return ok && e.TenantID == tenantID, nil
}

func (s *Store) ListEntries(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	s.mu.RLock()
	items := make([]domain.JournalEntry, 0)
	for _, e := range s.entries {
		if e.TenantID == tenantID {
			items = append(items, e)
		}
	}
	s.mu.RUnlock()
	return paginate(items, func(e domain.JournalEntry) pageKey {
		return pageKey{sortDate: e.EntryDate, createdAt: e.CreatedAt, id: e.EntryID}
	}, limit, nextToken)
}

func (s *Store) CreateEntry(ctx context.Context, entry domain.JournalEntry) error {
	if err := s.enter(OpCreateEntry); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.EntryID]; ok {
		return fmt.Errorf("%w: journal entry %s already exists", apperrors.ErrDuplicate, entry.EntryID)
	}
	if entry.SourceDraftID != nil {
		for _, e := range s.entries {
			if e.TenantID == entry.TenantID && e.SourceDraftID != nil && *e.SourceDraftID == *entry.SourceDraftID {
				return fmt.Errorf("%w: draft %s already has journal entry %s", apperrors.ErrDuplicate, *entry.SourceDraftID, e.EntryID)
			}
		}
	}
	entry.Lines = nil
	s.entries[entry.EntryID] = entry
	return nil
}

func (s *Store) CreateLines(ctx context.Context, lines []domain.JournalLine) error {
	if err := s.enter(OpCreateLines); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range lines {
		if _, ok := s.entries[l.EntryID]; !ok {
			return fmt.Errorf("journal line %s references missing entry %s", l.LineID, l.EntryID)
		}
		if _, ok := s.accounts[l.AccountID]; !ok {
			return fmt.Errorf("journal line %s references missing account %s", l.LineID, l.AccountID)
		}
	}
	for _, l := range lines {
		s.lines[l.EntryID] = append(s.lines[l.EntryID], l)
	}
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, tenantID, entryID string) error {
	if err := s.enter(OpDeleteEntry); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entryID]
	if !ok || e.TenantID != tenantID {
		return apperrors.ErrNotFound
	}
	delete(s.lines, entryID)
	delete(s.entries, entryID)
	return nil
}
