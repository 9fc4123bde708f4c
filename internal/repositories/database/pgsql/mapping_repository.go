package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	"github.com/SscSPs/prompt_books/internal/models"
	"github.com/SscSPs/prompt_books/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxMappingRepository struct {
	BaseRepository
}

func newPgxMappingRepository(pool *pgxpool.Pool) portsrepo.MappingRepository {
	return &PgxMappingRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.MappingRepository = (*PgxMappingRepository)(nil)

// FindMapping retrieves the explicit mapping of an intent.
func (r *PgxMappingRepository) FindMapping(ctx context.Context, tenantID string, intent domain.Intent) (*domain.IntentMapping, error) {
	query := `
		SELECT tenant_id, intent, debit_account_id, credit_account_id, tax_debit_account_id, tax_credit_account_id,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM intent_account_mappings
		WHERE tenant_id = $1 AND intent = $2;
	`
	var m models.IntentMapping
	err := r.DB(ctx).QueryRow(ctx, query, tenantID, string(intent)).Scan(
		&m.TenantID,
		&m.Intent,
		&m.DebitAccountID,
		&m.CreditAccountID,
		&m.TaxDebitAccountID,
		&m.TaxCreditAccountID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find mapping for %s: %w", intent, err)
	}
	d := mapping.ToDomainIntentMapping(m)
	return &d, nil
}

// UpsertMapping inserts or replaces the mapping of (tenant, intent). Creation audit columns survive a replace.
func (r *PgxMappingRepository) UpsertMapping(ctx context.Context, im domain.IntentMapping) error {
	m := mapping.ToModelIntentMapping(im)
	query := `
		INSERT INTO intent_account_mappings (tenant_id, intent, debit_account_id, credit_account_id,
			tax_debit_account_id, tax_credit_account_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tenant_id, intent) DO UPDATE SET
			debit_account_id = EXCLUDED.debit_account_id,
			credit_account_id = EXCLUDED.credit_account_id,
			tax_debit_account_id = EXCLUDED.tax_debit_account_id,
			tax_credit_account_id = EXCLUDED.tax_credit_account_id,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.DB(ctx).Exec(ctx, query,
		m.TenantID,
		m.Intent,
		m.DebitAccountID,
		m.CreditAccountID,
		m.TaxDebitAccountID,
		m.TaxCreditAccountID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return fmt.Errorf("%w: mapping for %s references an unknown account", apperrors.ErrValidation, m.Intent)
		}
		return fmt.Errorf("failed to upsert mapping for %s: %w", m.Intent, err)
	}
	return nil
}
