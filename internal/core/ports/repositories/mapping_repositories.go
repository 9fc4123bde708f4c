package repositories

import (
	"context"

	"github.com/SscSPs/prompt_books/internal/core/domain"
)

// MappingRepository persists the explicit intent-to-account mappings of a tenant.
type MappingRepository interface {
	// FindMapping returns the tenant's explicit mapping for intent, or apperrors.ErrNotFound.
	FindMapping(ctx context.Context, tenantID string, intent domain.Intent) (*domain.IntentMapping, error)

	// UpsertMapping inserts or replaces the mapping for (TenantID, Intent).
	UpsertMapping(ctx context.Context, mapping domain.IntentMapping) error
}
