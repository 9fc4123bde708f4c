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
	"github.com/SscSPs/prompt_books/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, tenant_id, entry_date, description, status, source_draft_id, approved_by, posted_at,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxJournalRepository implements the journal repository using pgx.
type PgxJournalRepository struct {
	BaseRepository
}

func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.TenantID,
		&m.EntryDate,
		&m.Description,
		&m.Status,
		&m.SourceDraftID,
		&m.ApprovedBy,
		&m.PostedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// CreateEntry inserts a journal header.
func (r *PgxJournalRepository) CreateEntry(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	query := `INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`
	_, err := r.DB(ctx).Exec(ctx, query,
		m.EntryID,
		m.TenantID,
		m.EntryDate,
		m.Description,
		m.Status,
		m.SourceDraftID,
		m.ApprovedBy,
		m.PostedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: journal entry for source draft already exists", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert journal entry %s: %w", m.EntryID, err)
	}
	return nil
}

// CreateLines inserts the lines in a single batch.
func (r *PgxJournalRepository) CreateLines(ctx context.Context, lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `
		INSERT INTO journal_lines (line_id, entry_id, account_id, debit, credit, memo)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	batch := &pgx.Batch{}
	for _, l := range lines {
		m := mapping.ToModelJournalLine(l)
		batch.Queue(query, m.LineID, m.EntryID, m.AccountID, m.Debit, m.Credit, m.Memo)
	}

	br := r.DB(ctx).SendBatch(ctx, batch)
	defer br.Close()
	for i := range lines {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert journal line %d of entry %s: %w", i+1, lines[i].EntryID, err)
		}
	}
	return br.Close()
}

// DeleteEntry removes the lines and then the header.
func (r *PgxJournalRepository) DeleteEntry(ctx context.Context, tenantID, entryID string) error {
	db := r.DB(ctx)
	if _, err := db.Exec(ctx, `
		DELETE FROM journal_lines l
		USING journal_entries e
		WHERE l.entry_id = e.entry_id AND e.tenant_id = $1 AND e.entry_id = $2;`, tenantID, entryID); err != nil {
		return fmt.Errorf("failed to delete lines of journal entry %s: %w", entryID, err)
	}
	tag, err := db.Exec(ctx, `DELETE FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2;`, tenantID, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// EntryExists reports whether the header row is present.
func (r *PgxJournalRepository) EntryExists(ctx context.Context, tenantID, entryID string) (bool, error) {
	var exists bool
	err := r.DB(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2);`,
		tenantID, entryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check journal entry %s: %w", entryID, err)
	}
	return exists, nil
}

// FindEntryByID retrieves a journal entry with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2;`
	return r.findOne(ctx, query, tenantID, entryID)
}

// FindEntryBySourceDraft retrieves the entry created from a draft.
func (r *PgxJournalRepository) FindEntryBySourceDraft(ctx context.Context, tenantID, draftID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1 AND source_draft_id = $2;`
	return r.findOne(ctx, query, tenantID, draftID)
}

func (r *PgxJournalRepository) findOne(ctx context.Context, query string, args ...any) (*domain.JournalEntry, error) {
	m, err := scanEntry(r.DB(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal entry: %w", err)
	}
	entry := mapping.ToDomainJournalEntry(m)
	lines, err := r.findLines(ctx, entry.EntryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return &entry, nil
}

func (r *PgxJournalRepository) findLines(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	rows, err := r.DB(ctx).Query(ctx, `
		SELECT line_id, entry_id, account_id, debit, credit, memo
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY debit DESC, line_id;`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of journal entry %s: %w", entryID, err)
	}
	defer rows.Close()

	var ms []models.JournalLine
	for rows.Next() {
		var m models.JournalLine
		if err := rows.Scan(&m.LineID, &m.EntryID, &m.AccountID, &m.Debit, &m.Credit, &m.Memo); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal lines: %w", err)
	}
	return mapping.ToDomainJournalLineSlice(ms), nil
}

// ListEntries pages through journal headers ordered by entry_date, created_at then entry_id, newest first.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	// One extra row tells us whether another page exists.
	fetchLimit := limit + 1

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", fmt.Errorf("%w: %v", apperrors.ErrValidation, decodeErr))
		}
		query := `SELECT ` + entryColumns + ` FROM journal_entries
			WHERE tenant_id = $1 AND (entry_date, created_at, entry_id) < ($2, $3, $4)
			ORDER BY entry_date DESC, created_at DESC, entry_id DESC LIMIT $5;`
		rows, err = r.DB(ctx).Query(ctx, query, tenantID, lastDate, lastCreatedAt, lastID, fetchLimit)
	} else {
		query := `SELECT ` + entryColumns + ` FROM journal_entries
			WHERE tenant_id = $1
			ORDER BY entry_date DESC, created_at DESC, entry_id DESC LIMIT $2;`
		rows, err = r.DB(ctx).Query(ctx, query, tenantID, fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entries for tenant "+tenantID, err)
	}
	defer rows.Close()

	ms := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal entry row", scanErr)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}

	var nextTokenVal *string
	if len(ms) > limit {
		last := ms[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt, last.EntryID)
		nextTokenVal = &token
		ms = ms[:limit]
	}

	entries := make([]domain.JournalEntry, len(ms))
	for i, m := range ms {
		entries[i] = mapping.ToDomainJournalEntry(m)
	}
	return entries, nextTokenVal, nil
}
