package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DraftStatus is the lifecycle state of a draft.
type DraftStatus string

const (
	DraftStatusDraft    DraftStatus = "draft"
	DraftStatusApproved DraftStatus = "approved"
	DraftStatusPosted   DraftStatus = "posted"
)

func (s DraftStatus) IsValid() bool {
	return s == DraftStatusDraft || s == DraftStatusApproved || s == DraftStatusPosted
}

// TaxInfo describes the tax attached to a draft. Amount wins over Rate when both are set.
type TaxInfo struct {
	Rate   *decimal.Decimal `json:"rate,omitempty"`   // percentage, e.g. 5 for 5%
	Amount *decimal.Decimal `json:"amount,omitempty"` // verbatim tax amount
}

// DraftEntities is the structured entity bag extracted from a prompt or OCR text.
type DraftEntities struct {
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Date           time.Time       `json:"date"`
	Counterparty   string          `json:"counterparty,omitempty"`
	Description    string          `json:"description,omitempty"`
	Tax            *TaxInfo        `json:"tax,omitempty"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	DocumentNumber string          `json:"document_number,omitempty"`
}

// Draft is a proposed financial event awaiting human review.
type Draft struct {
	DraftID       string          `json:"draftID"`
	TenantID      string          `json:"tenantID"`
	Intent        Intent          `json:"intent"`
	Entities      DraftEntities   `json:"entities"`
	Status        DraftStatus     `json:"status"`
	Confidence    decimal.Decimal `json:"confidence"`
	ApprovedBy    *string         `json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time      `json:"approvedAt,omitempty"`
	PostedEntryID *string         `json:"postedEntryID,omitempty"`
	Version       int64           `json:"version"`
	AuditFields
}

// IsPosted reports whether the draft has been turned into a journal entry.
// A posted draft is immutable.
func (d *Draft) IsPosted() bool {
	return d.PostedEntryID != nil || d.Status == DraftStatusPosted
}

// Approve stamps the approver and moves the draft to approved.
func (d *Draft) Approve(approverID string, at time.Time) {
	d.Status = DraftStatusApproved
	d.ApprovedBy = &approverID
	d.ApprovedAt = &at
	d.Touch(approverID, at)
}

// InvalidateApproval demotes an approved draft back to draft after a content change.
func (d *Draft) InvalidateApproval() {
	if d.Status != DraftStatusApproved {
		return
	}
	d.Status = DraftStatusDraft
	d.ApprovedBy = nil
	d.ApprovedAt = nil
}

// MarkPosted links the draft to its journal entry.
func (d *Draft) MarkPosted(entryID string, at time.Time, by string) {
	d.Status = DraftStatusPosted
	d.PostedEntryID = &entryID
	d.Touch(by, at)
}
