package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
)

func (s *Store) FindDraftByID(ctx context.Context, tenantID, draftID string) (*domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[draftID]
	if !ok || d.TenantID != tenantID {
		return nil, apperrors.ErrNotFound
	}
	return &d, nil
}

func (s *Store) ListDrafts(ctx context.Context, tenantID string, status *domain.DraftStatus, limit int, nextToken *string) ([]domain.Draft, *string, error) {
	s.mu.RLock()
	items := make([]domain.Draft, 0)
	for _, d := range s.drafts {
		if d.TenantID != tenantID || (status != nil && d.Status != *status) {
			continue
		}
		items = append(items, d)
	}
	s.mu.RUnlock()
	return paginate(items, func(d domain.Draft) pageKey {
		return pageKey{sortDate: d.CreatedAt, createdAt: d.CreatedAt, id: d.DraftID}
	}, limit, nextToken)
}

func (s *Store) SaveDraft(ctx context.Context, draft domain.Draft) error {
	if err := s.enter(OpSaveDraft); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[draft.DraftID]; ok {
		return fmt.Errorf("%w: draft %s already exists", apperrors.ErrDuplicate, draft.DraftID)
	}
	s.drafts[draft.DraftID] = draft
	return nil
}

func (s *Store) UpdateDraft(ctx context.Context, draft domain.Draft) error {
	if err := s.enter(OpUpdateDraft); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.drafts[draft.DraftID]
	if !ok || stored.TenantID != draft.TenantID {
		return apperrors.ErrNotFound
	}
	if stored.Version != draft.Version {
		return fmt.Errorf("%w: draft %s is at version %d, not %d", apperrors.ErrConflict, draft.DraftID, stored.Version, draft.Version)
	}
	if stored.PostedEntryID != nil {
		return fmt.Errorf("%w: draft %s is posted", apperrors.ErrConflict, draft.DraftID)
	}
	draft.Version++
	draft.PostedEntryID = nil
	draft.CreatedAt = stored.CreatedAt
	draft.CreatedBy = stored.CreatedBy
	s.drafts[draft.DraftID] = draft
	return nil
}

func (s *Store) MarkDraftPosted(ctx context.Context, tenantID, draftID string, version int64, entryID, userID string, now time.Time) (bool, error) {
	if err := s.enter(OpMarkDraftPosted); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[draftID]
	if !ok || d.TenantID != tenantID {
		return false, apperrors.ErrNotFound
	}
	if d.Status != domain.DraftStatusApproved || d.PostedEntryID != nil || d.Version != version {
		return false, nil
	}
	d.MarkPosted(entryID, now, userID)
	d.Version++
	s.drafts[draftID] = d
	return true, nil
}
