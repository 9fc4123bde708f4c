package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	"github.com/SscSPs/prompt_books/internal/models"
	"github.com/SscSPs/prompt_books/internal/utils/mapping"
	"github.com/SscSPs/prompt_books/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const draftColumns = `draft_id, tenant_id, intent, entities, status, confidence, approved_by, approved_at,
	posted_entry_id, version, created_at, created_by, last_updated_at, last_updated_by`

type PgxDraftRepository struct {
	BaseRepository
}

func newPgxDraftRepository(pool *pgxpool.Pool) portsrepo.DraftRepositoryFacade {
	return &PgxDraftRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.DraftRepositoryFacade = (*PgxDraftRepository)(nil)

func scanDraft(row pgx.Row) (domain.Draft, error) {
	var m models.Draft
	if err := row.Scan(
		&m.DraftID,
		&m.TenantID,
		&m.Intent,
		&m.Entities,
		&m.Status,
		&m.Confidence,
		&m.ApprovedBy,
		&m.ApprovedAt,
		&m.PostedEntryID,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	); err != nil {
		return domain.Draft{}, err
	}
	return mapping.ToDomainDraft(m)
}

func (r *PgxDraftRepository) FindDraftByID(ctx context.Context, tenantID, draftID string) (*domain.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE tenant_id = $1 AND draft_id = $2;`
	d, err := scanDraft(r.DB(ctx).QueryRow(ctx, query, tenantID, draftID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find draft %s: %w", draftID, err)
	}
	return &d, nil
}

// ListDrafts pages through drafts newest first. The cursor is (created_at, draft_id).
func (r *PgxDraftRepository) ListDrafts(ctx context.Context, tenantID string, status *domain.DraftStatus, limit int, nextToken *string) ([]domain.Draft, *string, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	fetchLimit := limit + 1

	query := `SELECT ` + draftColumns + ` FROM drafts WHERE tenant_id = $1`
	args := []any{tenantID}
	if status != nil {
		args = append(args, string(*status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if nextToken != nil && *nextToken != "" {
		_, lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", fmt.Errorf("%w: %v", apperrors.ErrValidation, decodeErr))
		}
		args = append(args, lastCreatedAt, lastID)
		query += ` AND (created_at, draft_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}
	args = append(args, fetchLimit)
	query += ` ORDER BY created_at DESC, draft_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query drafts for tenant "+tenantID, err)
	}
	defer rows.Close()

	drafts := make([]domain.Draft, 0, fetchLimit)
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan draft row", err)
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating draft rows", err)
	}

	var nextTokenVal *string
	if len(drafts) > limit {
		last := drafts[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.CreatedAt, last.DraftID)
		nextTokenVal = &token
		drafts = drafts[:limit]
	}
	return drafts, nextTokenVal, nil
}

func (r *PgxDraftRepository) SaveDraft(ctx context.Context, draft domain.Draft) error {
	m, err := mapping.ToModelDraft(draft)
	if err != nil {
		return err
	}
	query := `INSERT INTO drafts (` + draftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`
	_, err = r.DB(ctx).Exec(ctx, query,
		m.DraftID,
		m.TenantID,
		m.Intent,
		m.Entities,
		m.Status,
		m.Confidence,
		m.ApprovedBy,
		m.ApprovedAt,
		m.PostedEntryID,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: draft %s already exists", apperrors.ErrDuplicate, m.DraftID)
		}
		return fmt.Errorf("failed to save draft %s: %w", m.DraftID, err)
	}
	return nil
}

// UpdateDraft is an optimistic update guarded by version; posted drafts never match.
func (r *PgxDraftRepository) UpdateDraft(ctx context.Context, draft domain.Draft) error {
	m, err := mapping.ToModelDraft(draft)
	if err != nil {
		return err
	}
	query := `
		UPDATE drafts
		SET intent = $3, entities = $4, status = $5, confidence = $6, approved_by = $7, approved_at = $8,
		    last_updated_at = $9, last_updated_by = $10, version = version + 1
		WHERE tenant_id = $1 AND draft_id = $2 AND version = $11 AND posted_entry_id IS NULL;
	`
	tag, err := r.DB(ctx).Exec(ctx, query,
		m.TenantID,
		m.DraftID,
		m.Intent,
		m.Entities,
		m.Status,
		m.Confidence,
		m.ApprovedBy,
		m.ApprovedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update draft %s: %w", m.DraftID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, findErr := r.FindDraftByID(ctx, m.TenantID, m.DraftID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: draft %s changed since version %d", apperrors.ErrConflict, m.DraftID, m.Version)
	}
	return nil
}

// MarkDraftPosted moves an approved draft to posted in a single conditional update.
// The version guard keeps an entry built from old content from being linked to an edited draft.
func (r *PgxDraftRepository) MarkDraftPosted(ctx context.Context, tenantID, draftID string, version int64, entryID, userID string, now time.Time) (bool, error) {
	query := `
		UPDATE drafts
		SET status = $3, posted_entry_id = $4, last_updated_at = $5, last_updated_by = $6, version = version + 1
		WHERE tenant_id = $1 AND draft_id = $2 AND status = $7 AND posted_entry_id IS NULL AND version = $8;
	`
	tag, err := r.DB(ctx).Exec(ctx, query,
		tenantID, draftID,
		string(domain.DraftStatusPosted), entryID, now, userID,
		string(domain.DraftStatusApproved),
		version,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark draft %s posted: %w", draftID, err)
	}
	return tag.RowsAffected() == 1, nil
}
