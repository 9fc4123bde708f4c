package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/models"
)

// ToModelAuditLog converts an audit event to its row.
func ToModelAuditLog(d domain.AuditEvent) (models.AuditLog, error) {
	changes := d.Changes
	if changes == nil {
		changes = map[string]any{}
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		return models.AuditLog{}, fmt.Errorf("encode audit changes: %w", err)
	}
	return models.AuditLog{
		EventID:   d.EventID,
		TenantID:  d.TenantID,
		ActorID:   d.ActorID,
		Action:    d.Action,
		Entity:    d.Entity,
		EntityID:  d.EntityID,
		Changes:   raw,
		CreatedAt: d.CreatedAt,
	}, nil
}

// ToDomainAuditEvent converts an audit row to the domain type.
func ToDomainAuditEvent(m models.AuditLog) (domain.AuditEvent, error) {
	changes := map[string]any{}
	if len(m.Changes) > 0 {
		if err := json.Unmarshal(m.Changes, &changes); err != nil {
			return domain.AuditEvent{}, fmt.Errorf("decode audit changes of %s: %w", m.EventID, err)
		}
	}
	return domain.AuditEvent{
		EventID:   m.EventID,
		TenantID:  m.TenantID,
		ActorID:   m.ActorID,
		Action:    m.Action,
		Entity:    m.Entity,
		EntityID:  m.EntityID,
		Changes:   changes,
		CreatedAt: m.CreatedAt,
	}, nil
}

// ToModelOutboxEvent converts an outbox event to its row.
func ToModelOutboxEvent(d domain.OutboxEvent) models.OutboxEvent {
	var lastErr *string
	if d.LastError != "" {
		e := d.LastError
		lastErr = &e
	}
	return models.OutboxEvent{
		EventID:      d.EventID,
		TenantID:     d.TenantID,
		Topic:        d.Topic,
		AggregateID:  d.AggregateID,
		Payload:      d.Payload,
		Attempts:     d.Attempts,
		LastError:    lastErr,
		DeliveredTo:  d.DeliveredTo,
		CreatedAt:    d.CreatedAt,
		DispatchedAt: d.DispatchedAt,
	}
}

// ToDomainOutboxEvent converts an outbox row to the domain type.
func ToDomainOutboxEvent(m models.OutboxEvent) domain.OutboxEvent {
	ev := domain.OutboxEvent{
		EventID:      m.EventID,
		TenantID:     m.TenantID,
		Topic:        m.Topic,
		AggregateID:  m.AggregateID,
		Payload:      m.Payload,
		Attempts:     m.Attempts,
		DeliveredTo:  m.DeliveredTo,
		CreatedAt:    m.CreatedAt,
		DispatchedAt: m.DispatchedAt,
	}
	if m.LastError != nil {
		ev.LastError = *m.LastError
	}
	return ev
}
