package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prompt_books/internal/core/ports/services"
	"github.com/SscSPs/prompt_books/internal/dto"
	"github.com/SscSPs/prompt_books/internal/utils/ids"
)

const entityAccount = "account"

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo  portsrepo.AccountRepositoryFacade
	audit        portssvc.AuditRecorder
	defaultChart []ChartAccount
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithDefaultChart replaces the embedded default chart.
func WithDefaultChart(chart []ChartAccount) AccountServiceOption {
	return func(s *accountService) {
		s.defaultChart = chart
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, audit portssvc.AuditRecorder, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo:  repo,
		audit:        audit,
		defaultChart: DefaultChart(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, actor domain.Actor, req dto.CreateAccountRequest) (*domain.Account, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.Role.CanAdministerChart, "change the chart of accounts"); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: account code and name are required", apperrors.ErrValidation)
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}

	existing, err := s.accountRepo.FindAccountByCode(ctx, actor.TenantID, code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up account code", slog.String("code", code))
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: account code %s already exists (%s)", apperrors.ErrDuplicate, code, existing.Name)
	}

	account := s.newAccount(actor.TenantID, actor.UserID, code, name, req.AccountType)
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account",
			slog.String("account_id", account.AccountID),
			slog.String("code", code))
		return nil, err
	}

	s.audit.Record(ctx, actor, domain.AuditAccountCreated, entityAccount, account.AccountID, map[string]any{
		"code": account.Code, "name": account.Name, "type": string(account.AccountType),
	})
	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("code", code))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, actor domain.Actor, accountID string) (*domain.Account, error) {
	if err := s.AuthorizeActor(ctx, actor, canRead, "read accounts"); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, actor.TenantID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, actor domain.Actor, includeInactive bool) ([]domain.Account, error) {
	if err := s.AuthorizeActor(ctx, actor, canRead, "read accounts"); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, actor.TenantID, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("tenant_id", actor.TenantID))
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, actor domain.Actor, accountID string) error {
	if err := s.AuthorizeActor(ctx, actor, domain.Role.CanAdministerChart, "change the chart of accounts"); err != nil {
		return err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, actor.TenantID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return nil
	}
	if err := s.accountRepo.DeactivateAccount(ctx, actor.TenantID, accountID, actor.UserID, s.Now()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return err
	}
	s.audit.Record(ctx, actor, domain.AuditAccountDeactivated, entityAccount, accountID, map[string]any{"code": account.Code})
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID), slog.String("code", account.Code))
	return nil
}

func (s *accountService) DeleteAccount(ctx context.Context, actor domain.Actor, accountID string) error {
	if err := s.AuthorizeActor(ctx, actor, domain.Role.CanAdministerChart, "change the chart of accounts"); err != nil {
		return err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, actor.TenantID, accountID)
	if err != nil {
		return err
	}
	refs, err := s.accountRepo.CountAccountReferences(ctx, actor.TenantID, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count account references", slog.String("account_id", accountID))
		return err
	}
	if refs.InUse() {
		return fmt.Errorf("%w: account %s is used by %d journal line(s) and %d mapping(s); deactivate it instead",
			ErrAccountReferenced, account.Code, refs.JournalLines, refs.Mappings)
	}
	if err := s.accountRepo.DeleteAccount(ctx, actor.TenantID, accountID); err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}
	s.audit.Record(ctx, actor, domain.AuditAccountDeleted, entityAccount, accountID, map[string]any{"code": account.Code})
	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID), slog.String("code", account.Code))
	return nil
}

// EnsureDefaultChart creates the default accounts the tenant is missing, matched by code.
// Inactive accounts count as present so a deliberate deactivation is not undone.
func (s *accountService) EnsureDefaultChart(ctx context.Context, tenantID, actorID string) (int, error) {
	existing, err := s.accountRepo.ListAccounts(ctx, tenantID, true)
	if err != nil {
		return 0, fmt.Errorf("list accounts for chart bootstrap: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, a := range existing {
		have[a.Code] = true
	}

	actor := domain.Actor{TenantID: tenantID, UserID: actorID}
	created := 0
	for _, tmpl := range s.defaultChart {
		if have[tmpl.Code] {
			continue
		}
		account := s.newAccount(tenantID, actorID, tmpl.Code, tmpl.Name, tmpl.Type)
		if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				// seeded concurrently
				continue
			}
			return created, fmt.Errorf("create default account %s: %w", tmpl.Code, err)
		}
		created++
		s.audit.Record(ctx, actor, domain.AuditAccountCreated, entityAccount, account.AccountID, map[string]any{
			"code": account.Code, "name": account.Name, "type": string(account.AccountType), "source": "default_chart",
		})
	}
	if created > 0 {
		s.LogInfo(ctx, "Default chart of accounts seeded", slog.String("tenant_id", tenantID), slog.Int("created", created))
	}
	return created, nil
}

func (s *accountService) newAccount(tenantID, userID, code, name string, accountType domain.AccountType) domain.Account {
	now := s.Now()
	return domain.Account{
		AccountID:   ids.NewUUID(),
		TenantID:    tenantID,
		Code:        code,
		Name:        name,
		AccountType: accountType,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(userID, now),
	}
}
