// Package memory is a process-local implementation of the repository ports.
// It has no real transactions: a unit of work that fails halfway leaves its
// earlier writes in place, exactly like a store without rollback.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
)

// Operation names a store call that can be made to fail.
type Operation string

const (
	OpSaveAccount     Operation = "SaveAccount"
	OpSaveDraft       Operation = "SaveDraft"
	OpUpdateDraft     Operation = "UpdateDraft"
	OpMarkDraftPosted Operation = "MarkDraftPosted"
	OpCreateEntry     Operation = "CreateEntry"
	OpCreateLines     Operation = "CreateLines"
	OpDeleteEntry     Operation = "DeleteEntry"
	OpEntryExists     Operation = "EntryExists"
	OpSaveOutbox      Operation = "SaveOutboxEvent"
	OpSaveAudit       Operation = "SaveAuditEvent"
)

// ErrInjected is the default failure returned by FailOn.
var ErrInjected = errors.New("injected store failure")

// Store keeps every table in maps guarded by one mutex.
type Store struct {
	mu sync.RWMutex

	accounts map[string]domain.Account // by account id
	mappings map[string]domain.IntentMapping
	drafts   map[string]domain.Draft
	entries  map[string]domain.JournalEntry
	lines    map[string][]domain.JournalLine // by entry id
	audit    []domain.AuditEvent
	outbox   map[string]domain.OutboxEvent
	outboxQ  []string // insertion order

	failures map[Operation]error
	hooks    map[Operation]func()
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		mappings: make(map[string]domain.IntentMapping),
		drafts:   make(map[string]domain.Draft),
		entries:  make(map[string]domain.JournalEntry),
		lines:    make(map[string][]domain.JournalLine),
		outbox:   make(map[string]domain.OutboxEvent),
		failures: make(map[Operation]error),
		hooks:    make(map[Operation]func()),
	}
}

// NewRepositoryProvider wires a single store behind every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: s,
		MappingRepo: s,
		DraftRepo:   s,
		JournalRepo: s,
		AuditRepo:   s,
		OutboxRepo:  s,
		TxManager:   s,
	}
}

var (
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.MappingRepository       = (*Store)(nil)
	_ portsrepo.DraftRepositoryFacade   = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade = (*Store)(nil)
	_ portsrepo.AuditRepository         = (*Store)(nil)
	_ portsrepo.OutboxRepository        = (*Store)(nil)
	_ portsrepo.TransactionManager      = (*Store)(nil)
)

// FailOn makes every later call of op return err (ErrInjected when err is nil)
// until Reset or ClearFailure is called.
func (s *Store) FailOn(op Operation, err error) {
	if err == nil {
		err = ErrInjected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// ClearFailure removes an injected failure.
func (s *Store) ClearFailure(op Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, op)
}

// OnCall runs fn before op executes, outside the store lock.
func (s *Store) OnCall(op Operation, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[op] = fn
}

// Reset drops every injected failure and hook.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[Operation]error)
	s.hooks = make(map[Operation]func())
}

// enter runs the hook for op and returns its injected failure, if any.
func (s *Store) enter(op Operation) error {
	s.mu.RLock()
	hook := s.hooks[op]
	err := s.failures[op]
	s.mu.RUnlock()
	if hook != nil {
		hook()
	}
	return err
}

// WithinTx runs fn directly. Nothing is rolled back on failure.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func tenantKey(tenantID, id string) string {
	return tenantID + "/" + id
}
