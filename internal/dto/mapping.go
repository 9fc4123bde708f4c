package dto

import (
	"time"

	"github.com/SscSPs/prompt_books/internal/core/domain"
)

// UpsertMappingRequest sets the account slots for one intent.
type UpsertMappingRequest struct {
	DebitAccountID     string  `json:"debitAccountID" binding:"required,uuid"`
	CreditAccountID    string  `json:"creditAccountID" binding:"required,uuid"`
	TaxDebitAccountID  *string `json:"taxDebitAccountID" binding:"omitempty,uuid"`
	TaxCreditAccountID *string `json:"taxCreditAccountID" binding:"omitempty,uuid"`
}

// MappingResponse is the explicit mapping stored for an intent.
type MappingResponse struct {
	Intent             domain.Intent `json:"intent"`
	DebitAccountID     string        `json:"debitAccountID"`
	CreditAccountID    string        `json:"creditAccountID"`
	TaxDebitAccountID  *string       `json:"taxDebitAccountID,omitempty"`
	TaxCreditAccountID *string       `json:"taxCreditAccountID,omitempty"`
	LastUpdatedAt      time.Time     `json:"lastUpdatedAt"`
	LastUpdatedBy      string        `json:"lastUpdatedBy"`
}

// ResolvedMappingResponse is the mapping the engine would post with right now.
type ResolvedMappingResponse struct {
	Intent  domain.Intent   `json:"intent"`
	Mapping *domain.Mapping `json:"mapping"` // null when the intent never posts
}

// ToMappingResponse converts a domain.IntentMapping to DTO.
func ToMappingResponse(m *domain.IntentMapping) MappingResponse {
	return MappingResponse{
		Intent:             m.Intent,
		DebitAccountID:     m.DebitAccountID,
		CreditAccountID:    m.CreditAccountID,
		TaxDebitAccountID:  m.TaxDebitAccountID,
		TaxCreditAccountID: m.TaxCreditAccountID,
		LastUpdatedAt:      m.LastUpdatedAt,
		LastUpdatedBy:      m.LastUpdatedBy,
	}
}
