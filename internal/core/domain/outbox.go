package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TopicJournalPosted is the outbox topic for every journal entry committed to the ledger.
const TopicJournalPosted = "journal.posted"

// OutboxEvent is a side effect recorded in the same unit of work as the ledger write
// and delivered later by the outbox dispatcher.
type OutboxEvent struct {
	EventID      string          `json:"eventID"`
	TenantID     string          `json:"tenantID"`
	Topic        string          `json:"topic"`
	AggregateID  string          `json:"aggregateID"`
	Payload      json.RawMessage `json:"payload"`
	Attempts     int             `json:"attempts"`
	LastError    string          `json:"lastError,omitempty"`
	DeliveredTo  []string        `json:"deliveredTo,omitempty"` // handlers that already accepted the event
	CreatedAt    time.Time       `json:"createdAt"`
	DispatchedAt *time.Time      `json:"dispatchedAt,omitempty"`
}

// DeliveredBy reports whether handler already accepted the event on an earlier attempt.
func (e OutboxEvent) DeliveredBy(handler string) bool {
	for _, h := range e.DeliveredTo {
		if h == handler {
			return true
		}
	}
	return false
}

// JournalPostedPayload is the body of a journal.posted outbox event.
type JournalPostedPayload struct {
	EntryID      string          `json:"entry_id"`
	TenantID     string          `json:"tenant_id"`
	DraftID      string          `json:"draft_id,omitempty"`
	Intent       Intent          `json:"intent,omitempty"`
	EntryDate    time.Time       `json:"entry_date"`
	Description  string          `json:"description"`
	Total        decimal.Decimal `json:"total"`
	LineCount    int             `json:"line_count"`
	Counterparty string          `json:"counterparty,omitempty"`
	Memo         string          `json:"memo,omitempty"`
	PostedBy     string          `json:"posted_by"`
	PostedAt     time.Time       `json:"posted_at"`
}
