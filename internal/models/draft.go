package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Draft represents a row of the drafts table. Entities is stored as jsonb.
type Draft struct {
	DraftID       string          `db:"draft_id"`
	TenantID      string          `db:"tenant_id"`
	Intent        string          `db:"intent"`
	Entities      []byte          `db:"entities"`
	Status        string          `db:"status"`
	Confidence    decimal.Decimal `db:"confidence"`
	ApprovedBy    *string         `db:"approved_by"`
	ApprovedAt    *time.Time      `db:"approved_at"`
	PostedEntryID *string         `db:"posted_entry_id"`
	Version       int64           `db:"version"`
	AuditFields
}
