package domain

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

// JournalEntry is the header of a balanced financial event.
// Entries written by the posting engine are always posted on creation.
type JournalEntry struct {
	EntryID       string        `json:"entryID"`
	TenantID      string        `json:"tenantID"`
	EntryDate     time.Time     `json:"entryDate"`
	Description   string        `json:"description"`
	Status        JournalStatus `json:"status"`
	SourceDraftID *string       `json:"sourceDraftID,omitempty"`
	ApprovedBy    *string       `json:"approvedBy,omitempty"`
	PostedAt      *time.Time    `json:"postedAt,omitempty"`
	Lines         []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is a single debit or credit against one account.
// Exactly one of Debit and Credit is non-zero for a well-formed line.
type JournalLine struct {
	LineID    string          `json:"lineID"`
	EntryID   string          `json:"entryID"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo,omitempty"`
}

// IsDebit reports whether the line sits on the debit side.
func (l JournalLine) IsDebit() bool {
	return l.Debit.IsPositive()
}
