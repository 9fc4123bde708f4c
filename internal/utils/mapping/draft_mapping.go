package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/models"
)

// ToModelDraft converts a domain Draft to its row, encoding the entity bag.
func ToModelDraft(d domain.Draft) (models.Draft, error) {
	raw, err := json.Marshal(d.Entities)
	if err != nil {
		return models.Draft{}, fmt.Errorf("encode entities of draft %s: %w", d.DraftID, err)
	}
	return models.Draft{
		DraftID:       d.DraftID,
		TenantID:      d.TenantID,
		Intent:        string(d.Intent),
		Entities:      raw,
		Status:        string(d.Status),
		Confidence:    d.Confidence,
		ApprovedBy:    d.ApprovedBy,
		ApprovedAt:    d.ApprovedAt,
		PostedEntryID: d.PostedEntryID,
		Version:       d.Version,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainDraft converts a draft row to the domain type.
func ToDomainDraft(m models.Draft) (domain.Draft, error) {
	var entities domain.DraftEntities
	if len(m.Entities) > 0 {
		if err := json.Unmarshal(m.Entities, &entities); err != nil {
			return domain.Draft{}, fmt.Errorf("decode entities of draft %s: %w", m.DraftID, err)
		}
	}
	return domain.Draft{
		DraftID:       m.DraftID,
		TenantID:      m.TenantID,
		Intent:        domain.Intent(m.Intent),
		Entities:      entities,
		Status:        domain.DraftStatus(m.Status),
		Confidence:    m.Confidence,
		ApprovedBy:    m.ApprovedBy,
		ApprovedAt:    m.ApprovedAt,
		PostedEntryID: m.PostedEntryID,
		Version:       m.Version,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}, nil
}
