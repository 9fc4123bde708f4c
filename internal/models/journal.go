package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	JournalDraft  JournalStatus = "draft"
	JournalPosted JournalStatus = "posted"
	JournalVoid   JournalStatus = "void"
)

// JournalEntry represents a row of journal_entries.
type JournalEntry struct {
	EntryID       string        `db:"entry_id"`
	TenantID      string        `db:"tenant_id"`
	EntryDate     time.Time     `db:"entry_date"`
	Description   string        `db:"description"`
	Status        JournalStatus `db:"status"`
	SourceDraftID *string       `db:"source_draft_id"`
	ApprovedBy    *string       `db:"approved_by"`
	PostedAt      *time.Time    `db:"posted_at"`
	AuditFields
}

// JournalLine represents a row of journal_lines.
type JournalLine struct {
	LineID    string          `db:"line_id"`
	EntryID   string          `db:"entry_id"`
	AccountID string          `db:"account_id"`
	Debit     decimal.Decimal `db:"debit"`
	Credit    decimal.Decimal `db:"credit"`
	Memo      *string         `db:"memo"`
}
