package workers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/prompt_books/internal/core/domain"
)

const upsertSearchDocument = `
INSERT INTO journal_search_documents (entry_id, tenant_id, entry_date, total, intent, counterparty, document, indexed_at)
VALUES ($1, $2, $3, $4, $5, $6, to_tsvector('simple', $7), $8)
ON CONFLICT (entry_id) DO UPDATE SET
	total = EXCLUDED.total,
	intent = EXCLUDED.intent,
	counterparty = EXCLUDED.counterparty,
	document = EXCLUDED.document,
	indexed_at = EXCLUDED.indexed_at`

// SearchIndexer keeps a full-text document per posted journal entry.
type SearchIndexer struct {
	db    *sql.DB
	clock func() time.Time
}

// NewSearchIndexer writes through db, normally opened with the pgx stdlib driver.
func NewSearchIndexer(db *sql.DB) *SearchIndexer {
	return &SearchIndexer{db: db, clock: func() time.Time { return time.Now().UTC() }}
}

func (s *SearchIndexer) Name() string { return "search_index" }

func (s *SearchIndexer) Handle(ctx context.Context, ev domain.OutboxEvent) error {
	if ev.Topic != domain.TopicJournalPosted {
		return nil
	}
	var p domain.JournalPostedPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", ev.Topic, err)
	}

	var intent, counterparty sql.NullString
	if p.Intent != "" {
		intent = sql.NullString{String: string(p.Intent), Valid: true}
	}
	if p.Counterparty != "" {
		counterparty = sql.NullString{String: p.Counterparty, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, upsertSearchDocument,
		p.EntryID,
		p.TenantID,
		p.EntryDate,
		p.Total.StringFixed(2),
		intent,
		counterparty,
		searchText(p),
		s.clock(),
	)
	if err != nil {
		return fmt.Errorf("index journal entry %s: %w", p.EntryID, err)
	}
	return nil
}

func searchText(p domain.JournalPostedPayload) string {
	parts := []string{p.Description, p.Memo, p.Counterparty, string(p.Intent)}
	out := parts[:0]
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, " ")
}
