package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/prompt_books/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account of a tenant by its unique identifier.
	FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its human code (e.g. "1100").
	FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)

	// ListAccounts retrieves the tenant's chart of accounts ordered by code.
	ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error)

	// CountAccountReferences counts journal lines and mappings pointing at the account.
	CountAccountReferences(ctx context.Context, tenantID, accountID string) (domain.AccountReferences, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. A taken code yields apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, tenantID, accountID, userID string, now time.Time) error

	// DeleteAccount removes an account row.
	DeleteAccount(ctx context.Context, tenantID, accountID string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
