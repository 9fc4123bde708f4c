package domain

import "time"

// Audit actions written by the engine.
const (
	AuditDraftCreated        = "draft.created"
	AuditDraftUpdated        = "draft.updated"
	AuditDraftApproved       = "draft.approved"
	AuditJournalPosted       = "journal.posted"
	AuditJournalManualPosted = "journal.manual_posted"
	AuditAccountCreated      = "account.created"
	AuditAccountDeactivated  = "account.deactivated"
	AuditAccountDeleted      = "account.deleted"
	AuditMappingUpserted     = "mapping.upserted"
)

// AuditEvent is an append-only record of a mutating operation.
type AuditEvent struct {
	EventID   string         `json:"eventID"`
	TenantID  string         `json:"tenantID"`
	ActorID   string         `json:"actorID"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entityID"`
	Changes   map[string]any `json:"changes"`
	CreatedAt time.Time      `json:"createdAt"`
}
