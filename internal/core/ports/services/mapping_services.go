package services

import (
	"context"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/dto"
)

// MappingResolver picks the accounts an intent posts to.
type MappingResolver interface {
	// Resolve returns the mapping for intent. A nil mapping with a nil error means
	// the intent never posts.
	Resolve(ctx context.Context, tenantID string, intent domain.Intent) (*domain.Mapping, error)
}

// MappingSvcFacade combines resolution with explicit mapping management.
type MappingSvcFacade interface {
	MappingResolver

	// UpsertMapping stores an explicit mapping for a mappable intent.
	UpsertMapping(ctx context.Context, actor domain.Actor, intent domain.Intent, req dto.UpsertMappingRequest) (*domain.IntentMapping, error)

	// GetMapping returns the explicit mapping for intent.
	GetMapping(ctx context.Context, actor domain.Actor, intent domain.Intent) (*domain.IntentMapping, error)
}
