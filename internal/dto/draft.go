package dto

import (
	"time"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateDraftRequest is what the extraction collaborator (or a person) submits.
type CreateDraftRequest struct {
	Intent     domain.Intent        `json:"intent" binding:"required,intent"`
	Entities   domain.DraftEntities `json:"entities"`
	Confidence *decimal.Decimal     `json:"confidence"`
}

// UpdateDraftRequest edits a draft. Omitted fields are left untouched; Entities replaces the whole bag.
type UpdateDraftRequest struct {
	Intent     *domain.Intent        `json:"intent" binding:"omitempty,intent"`
	Entities   *domain.DraftEntities `json:"entities"`
	Confidence *decimal.Decimal      `json:"confidence"`
	Version    *int64                `json:"version"` // optional optimistic check against the caller's copy
}

// ListDraftsParams defines query parameters for listing drafts.
type ListDraftsParams struct {
	Status    *domain.DraftStatus `form:"status" binding:"omitempty,draft_status"`
	Limit     int                 `form:"limit,default=20"`
	NextToken *string             `form:"nextToken"`
}

// DraftResponse defines the data returned for a draft.
type DraftResponse struct {
	DraftID       string               `json:"draftID"`
	Intent        domain.Intent        `json:"intent"`
	Entities      domain.DraftEntities `json:"entities"`
	Status        domain.DraftStatus   `json:"status"`
	Confidence    decimal.Decimal      `json:"confidence"`
	ApprovedBy    *string              `json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time           `json:"approvedAt,omitempty"`
	PostedEntryID *string              `json:"postedEntryID,omitempty"`
	Version       int64                `json:"version"`
	CreatedAt     time.Time            `json:"createdAt"`
	CreatedBy     string               `json:"createdBy"`
	LastUpdatedAt time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy string               `json:"lastUpdatedBy"`
}

// ListDraftsResponse wraps a page of drafts.
type ListDraftsResponse struct {
	Drafts    []DraftResponse `json:"drafts"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// PostDraftResponse is returned by the post endpoint.
type PostDraftResponse struct {
	DraftID string `json:"draftID"`
	EntryID string `json:"entryID"`
}

// ToDraftResponse converts a domain.Draft to DTO.
func ToDraftResponse(d *domain.Draft) DraftResponse {
	return DraftResponse{
		DraftID:       d.DraftID,
		Intent:        d.Intent,
		Entities:      d.Entities,
		Status:        d.Status,
		Confidence:    d.Confidence,
		ApprovedBy:    d.ApprovedBy,
		ApprovedAt:    d.ApprovedAt,
		PostedEntryID: d.PostedEntryID,
		Version:       d.Version,
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
		LastUpdatedAt: d.LastUpdatedAt,
		LastUpdatedBy: d.LastUpdatedBy,
	}
}

// ToListDraftsResponse converts a page of drafts to DTO.
func ToListDraftsResponse(drafts []domain.Draft, nextToken *string) ListDraftsResponse {
	list := make([]DraftResponse, len(drafts))
	for i, d := range drafts {
		list[i] = ToDraftResponse(&d)
	}
	return ListDraftsResponse{Drafts: list, NextToken: nextToken}
}
