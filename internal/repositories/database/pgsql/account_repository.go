package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	"github.com/SscSPs/prompt_books/internal/models"
	"github.com/SscSPs/prompt_books/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, tenant_id, code, name, account_type, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.TenantID,
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.DB(ctx).Exec(ctx, query,
		m.AccountID,
		m.TenantID,
		m.Code,
		m.Name,
		m.AccountType,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = $2;`
	m, err := scanAccount(r.DB(ctx).QueryRow(ctx, query, tenantID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountByCode retrieves an account by its code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND code = $2;`
	m, err := scanAccount(r.DB(ctx).QueryRow(ctx, query, tenantID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", code, err)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// ListAccounts retrieves the chart of accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1`
	if !includeInactive {
		query += ` AND is_active`
	}
	query += ` ORDER BY code;`

	rows, err := r.DB(ctx).Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var ms []models.Account
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return mapping.ToDomainAccountSlice(ms), nil
}

// CountAccountReferences counts journal lines and mappings that point at the account.
func (r *PgxAccountRepository) CountAccountReferences(ctx context.Context, tenantID, accountID string) (domain.AccountReferences, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM journal_lines l
			   JOIN journal_entries e ON e.entry_id = l.entry_id
			  WHERE e.tenant_id = $1 AND l.account_id = $2),
			(SELECT COUNT(*) FROM intent_account_mappings
			  WHERE tenant_id = $1
			    AND $2 IN (debit_account_id, credit_account_id, tax_debit_account_id, tax_credit_account_id));
	`
	var refs domain.AccountReferences
	if err := r.DB(ctx).QueryRow(ctx, query, tenantID, accountID).Scan(&refs.JournalLines, &refs.Mappings); err != nil {
		return refs, fmt.Errorf("failed to count references to account %s: %w", accountID, err)
	}
	return refs, nil
}

// DeactivateAccount marks an account inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, tenantID, accountID, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE tenant_id = $1 AND account_id = $2;
	`
	tag, err := r.DB(ctx).Exec(ctx, query, tenantID, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteAccount removes an account row. References are rejected by foreign keys.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, tenantID, accountID string) error {
	tag, err := r.DB(ctx).Exec(ctx, `DELETE FROM accounts WHERE tenant_id = $1 AND account_id = $2;`, tenantID, accountID)
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return fmt.Errorf("%w: account %s is still referenced", apperrors.ErrConflict, accountID)
		}
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
