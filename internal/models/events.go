package models

import "time"

// AuditLog represents a row of audit_logs. Changes is stored as jsonb.
type AuditLog struct {
	EventID   string    `db:"event_id"`
	TenantID  string    `db:"tenant_id"`
	ActorID   string    `db:"actor_id"`
	Action    string    `db:"action"`
	Entity    string    `db:"entity"`
	EntityID  string    `db:"entity_id"`
	Changes   []byte    `db:"changes"`
	CreatedAt time.Time `db:"created_at"`
}

// OutboxEvent represents a row of outbox_events.
type OutboxEvent struct {
	EventID      string     `db:"event_id"`
	TenantID     string     `db:"tenant_id"`
	Topic        string     `db:"topic"`
	AggregateID  string     `db:"aggregate_id"`
	Payload      []byte     `db:"payload"`
	Attempts     int        `db:"attempts"`
	LastError    *string    `db:"last_error"`
	DeliveredTo  []string   `db:"delivered_to"`
	CreatedAt    time.Time  `db:"created_at"`
	DispatchedAt *time.Time `db:"dispatched_at"`
}
