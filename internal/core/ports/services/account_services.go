package services

import (
	"context"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, actor domain.Actor, accountID string) (*domain.Account, error)

	// ListAccounts retrieves the tenant's chart of accounts ordered by code.
	ListAccounts(ctx context.Context, actor domain.Actor, includeInactive bool) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, actor domain.Actor, req dto.CreateAccountRequest) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, actor domain.Actor, accountID string) error

	// DeleteAccount hard-deletes an account that nothing references.
	DeleteAccount(ctx context.Context, actor domain.Actor, accountID string) error
}

// ChartBootstrapper seeds the default chart of accounts.
type ChartBootstrapper interface {
	// EnsureDefaultChart creates any default account whose code the tenant lacks.
	// Existing accounts are never modified.
	EnsureDefaultChart(ctx context.Context, tenantID, actorID string) (int, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	ChartBootstrapper
}
