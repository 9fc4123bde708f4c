package dto

import (
	"github.com/SscSPs/prompt_books/internal/core/domain"
)

// ListAuditParams defines query parameters for the audit trail.
type ListAuditParams struct {
	Entity    string  `form:"entity"`
	EntityID  string  `form:"entityID"`
	Limit     int     `form:"limit,default=50"`
	NextToken *string `form:"nextToken"`
}

// ListAuditResponse wraps a page of audit events.
type ListAuditResponse struct {
	Events    []domain.AuditEvent `json:"events"`
	NextToken *string             `json:"nextToken,omitempty"`
}
