package dto

import (
	"time"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ManualJournalLineRequest is one line of a hand-entered journal.
type ManualJournalLineRequest struct {
	AccountID string          `json:"accountID" binding:"required,uuid"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo" binding:"max=500"`
}

// ManualJournalRequest creates a posted journal entry directly, without a draft.
type ManualJournalRequest struct {
	Date        time.Time                  `json:"date" binding:"required"`
	Description string                     `json:"description" binding:"required,max=500"`
	Lines       []ManualJournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ListJournalsParams defines query parameters for listing journal entries.
type ListJournalsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID    string          `json:"lineID"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo,omitempty"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	EntryID       string                `json:"entryID"`
	Date          time.Time             `json:"date"`
	Description   string                `json:"description"`
	Status        domain.JournalStatus  `json:"status"`
	SourceDraftID *string               `json:"sourceDraftID,omitempty"`
	ApprovedBy    *string               `json:"approvedBy,omitempty"`
	PostedAt      *time.Time            `json:"postedAt,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	CreatedBy     string                `json:"createdBy"`
	Lines         []JournalLineResponse `json:"lines,omitempty"`
}

// ListJournalsResponse wraps a page of journal entries.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToJournalLineResponses converts lines to DTO.
func ToJournalLineResponses(lines []domain.JournalLine) []JournalLineResponse {
	res := make([]JournalLineResponse, len(lines))
	for i, l := range lines {
		res[i] = JournalLineResponse{
			LineID:    l.LineID,
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Memo:      l.Memo,
		}
	}
	return res
}

// ToJournalResponse converts a domain.JournalEntry to JournalResponse DTO.
func ToJournalResponse(j *domain.JournalEntry) JournalResponse {
	resp := JournalResponse{
		EntryID:       j.EntryID,
		Date:          j.EntryDate,
		Description:   j.Description,
		Status:        j.Status,
		SourceDraftID: j.SourceDraftID,
		ApprovedBy:    j.ApprovedBy,
		PostedAt:      j.PostedAt,
		CreatedAt:     j.CreatedAt,
		CreatedBy:     j.CreatedBy,
	}
	if len(j.Lines) > 0 {
		resp.Lines = ToJournalLineResponses(j.Lines)
	}
	return resp
}

// ToListJournalsResponse converts a page of entries to DTO.
func ToListJournalsResponse(entries []domain.JournalEntry, nextToken *string) ListJournalsResponse {
	list := make([]JournalResponse, len(entries))
	for i, e := range entries {
		list[i] = ToJournalResponse(&e)
	}
	return ListJournalsResponse{Journals: list, NextToken: nextToken}
}
