package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
)

func (s *Store) SaveAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	if err := s.enter(OpSaveAudit); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, event)
	return nil
}

func (s *Store) ListAuditEvents(ctx context.Context, tenantID string, filter portsrepo.AuditFilter, limit int, nextToken *string) ([]domain.AuditEvent, *string, error) {
	s.mu.RLock()
	items := make([]domain.AuditEvent, 0)
	for _, ev := range s.audit {
		if ev.TenantID != tenantID {
			continue
		}
		if filter.Entity != "" && ev.Entity != filter.Entity {
			continue
		}
		if filter.EntityID != "" && ev.EntityID != filter.EntityID {
			continue
		}
		items = append(items, ev)
	}
	s.mu.RUnlock()
	return paginate(items, func(ev domain.AuditEvent) pageKey {
		return pageKey{sortDate: ev.CreatedAt, createdAt: ev.CreatedAt, id: ev.EventID}
	}, limit, nextToken)
}

func (s *Store) SaveOutboxEvent(ctx context.Context, event domain.OutboxEvent) error {
	if err := s.enter(OpSaveOutbox); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.outbox[event.EventID]; ok {
		return fmt.Errorf("%w: outbox event %s already exists", apperrors.ErrDuplicate, event.EventID)
	}
	s.outbox[event.EventID] = event
	s.outboxQ = append(s.outboxQ, event.EventID)
	return nil
}

func (s *Store) FetchPendingOutboxEvents(ctx context.Context, limit, maxAttempts int) ([]domain.OutboxEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.OutboxEvent, 0, limit)
	for _, id := range s.outboxQ {
		ev, ok := s.outbox[id]
		if !ok || ev.DispatchedAt != nil {
			continue
		}
		if maxAttempts > 0 && ev.Attempts >= maxAttempts {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkOutboxDispatched(ctx context.Context, eventID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.outbox[eventID]
	if !ok {
		return apperrors.ErrNotFound
	}
	ev.DispatchedAt = &now
	ev.LastError = ""
	s.outbox[eventID] = ev
	return nil
}

func (s *Store) MarkOutboxHandlerDelivered(ctx context.Context, eventID, handler string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.outbox[eventID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !ev.DeliveredBy(handler) {
		ev.DeliveredTo = append(append([]string(nil), ev.DeliveredTo...), handler)
	}
	s.outbox[eventID] = ev
	return nil
}

func (s *Store) MarkOutboxFailed(ctx context.Context, eventID string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.outbox[eventID]
	if !ok {
		return apperrors.ErrNotFound
	}
	ev.Attempts++
	ev.LastError = reason
	s.outbox[eventID] = ev
	return nil
}

func (s *Store) DeleteOutboxEvent(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.outbox[eventID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.outbox, eventID)
	for i, id := range s.outboxQ {
		if id == eventID {
			s.outboxQ = append(s.outboxQ[:i], s.outboxQ[i+1:]...)
			break
		}
	}
	return nil
}

// OutboxEvents returns every stored outbox event in insertion order.
func (s *Store) OutboxEvents() []domain.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.OutboxEvent, 0, len(s.outboxQ))
	for _, id := range s.outboxQ {
		out = append(out, s.outbox[id])
	}
	return out
}

// EntryCount returns the number of journal headers across all tenants.
func (s *Store) EntryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// LineCount returns the number of journal lines across all tenants.
func (s *Store) LineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, ls := range s.lines {
		n += len(ls)
	}
	return n
}
