package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
)

func (s *Store) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok || acc.TenantID != tenantID {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (s *Store) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.accounts {
		if acc.TenantID == tenantID && acc.Code == code {
			return &acc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Account, 0)
	for _, acc := range s.accounts {
		if acc.TenantID != tenantID || (!includeInactive && !acc.IsActive) {
			continue
		}
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) CountAccountReferences(ctx context.Context, tenantID, accountID string) (domain.AccountReferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var refs domain.AccountReferences
	for entryID, lines := range s.lines {
		if s.entries[entryID].TenantID != tenantID {
			continue
		}
		for _, l := range lines {
			if l.AccountID == accountID {
				refs.JournalLines++
			}
		}
	}
	for _, m := range s.mappings {
		if m.TenantID != tenantID {
			continue
		}
		for _, id := range m.AccountIDs() {
			if id == accountID {
				refs.Mappings++
				break
			}
		}
	}
	return refs, nil
}

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	if err := s.enter(OpSaveAccount); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.AccountID]; ok {
		return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
	}
	for _, acc := range s.accounts {
		if acc.TenantID == account.TenantID && acc.Code == account.Code {
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, account.Code)
		}
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *Store) DeactivateAccount(ctx context.Context, tenantID, accountID, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok || acc.TenantID != tenantID {
		return apperrors.ErrNotFound
	}
	acc.IsActive = false
	acc.Touch(userID, now)
	s.accounts[accountID] = acc
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, tenantID, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok || acc.TenantID != tenantID {
		return apperrors.ErrNotFound
	}
	delete(s.accounts, accountID)
	return nil
}

// FindMapping returns the explicit mapping for intent.
func (s *Store) FindMapping(ctx context.Context, tenantID string, intent domain.Intent) (*domain.IntentMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mappings[tenantKey(tenantID, string(intent))]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &m, nil
}

func (s *Store) UpsertMapping(ctx context.Context, mapping domain.IntentMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tenantKey(mapping.TenantID, string(mapping.Intent))
	if existing, ok := s.mappings[key]; ok {
		mapping.CreatedAt = existing.CreatedAt
		mapping.CreatedBy = existing.CreatedBy
	}
	s.mappings[key] = mapping
	return nil
}
