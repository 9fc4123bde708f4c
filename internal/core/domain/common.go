package domain

import "time"

// AuditFields records who created and last changed a row, and when.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// NewAuditFields stamps a row created by userID at at.
func NewAuditFields(userID string, at time.Time) AuditFields {
	return AuditFields{CreatedAt: at, CreatedBy: userID, LastUpdatedAt: at, LastUpdatedBy: userID}
}

// Touch records a change by userID. Creation fields are kept.
func (a *AuditFields) Touch(userID string, at time.Time) {
	a.LastUpdatedAt = at
	a.LastUpdatedBy = userID
}
