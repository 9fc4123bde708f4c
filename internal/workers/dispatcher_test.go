package workers_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/repositories/database/memory"
	"github.com/SscSPs/prompt_books/internal/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	name   string
	seen   []string
	failOn map[string]error
}

func (h *recordingHandler) Name() string { return h.name }

func (h *recordingHandler) Handle(_ context.Context, ev domain.OutboxEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, ev.EventID)
	return h.failOn[ev.EventID]
}

func seedEvent(t *testing.T, store *memory.Store, id string, at time.Time) {
	t.Helper()
	require.NoError(t, store.SaveOutboxEvent(context.Background(), domain.OutboxEvent{
		EventID:     id,
		TenantID:    "tenant-1",
		Topic:       domain.TopicJournalPosted,
		AggregateID: "entry-" + id,
		Payload:     []byte(`{}`),
		CreatedAt:   at,
	}))
}

func pendingIDs(t *testing.T, store *memory.Store) []string {
	t.Helper()
	events, err := store.FetchPendingOutboxEvents(context.Background(), 100, 100)
	require.NoError(t, err)
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.EventID)
	}
	return ids
}

func TestDispatchOnce_DeliversToEveryHandlerInOrder(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	seedEvent(t, store, "b", base.Add(time.Second))
	seedEvent(t, store, "a", base)

	first := &recordingHandler{name: "first"}
	second := &recordingHandler{name: "second"}
	d := workers.NewOutboxDispatcher(store, workers.DispatcherConfig{BatchSize: 10}, []workers.EventHandler{first, second})

	n, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, first.seen)
	assert.Equal(t, []string{"a", "b"}, second.seen)
	assert.Empty(t, pendingIDs(t, store))
}

func TestDispatchOnce_FailureIsRetriedUntilMaxAttempts(t *testing.T) {
	store := memory.NewStore()
	seedEvent(t, store, "a", time.Now())

	flaky := &recordingHandler{name: "flaky", failOn: map[string]error{"a": errors.New("broker down")}}
	d := workers.NewOutboxDispatcher(store, workers.DispatcherConfig{BatchSize: 10, MaxAttempts: 2}, []workers.EventHandler{flaky})

	n, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"a"}, pendingIDs(t, store))

	events := store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Attempts)
	assert.Contains(t, events[0].LastError, "flaky: broker down")

	_, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, flaky.seen, 2)

	// Two attempts used up: the event is no longer picked.
	_, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, flaky.seen, 2)
}

func TestDispatchOnce_OneFailingHandlerKeepsEventPending(t *testing.T) {
	store := memory.NewStore()
	seedEvent(t, store, "a", time.Now())

	ok := &recordingHandler{name: "ok"}
	bad := &recordingHandler{name: "bad", failOn: map[string]error{"a": errors.New("nope")}}
	d := workers.NewOutboxDispatcher(store, workers.DispatcherConfig{}, []workers.EventHandler{ok, bad})

	n, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"a"}, ok.seen)
	assert.Equal(t, []string{"a"}, pendingIDs(t, store))

	events := store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, []string{"ok"}, events[0].DeliveredTo)
}

func TestDispatchOnce_RetryOnlyReachesFailedHandlers(t *testing.T) {
	store := memory.NewStore()
	seedEvent(t, store, "a", time.Now())

	insights := &recordingHandler{name: "insight"}
	kafka := &recordingHandler{name: "kafka", failOn: map[string]error{"a": errors.New("broker down")}}
	d := workers.NewOutboxDispatcher(store, workers.DispatcherConfig{MaxAttempts: 5}, []workers.EventHandler{insights, kafka})

	n, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	kafka.mu.Lock()
	kafka.failOn = nil
	kafka.mu.Unlock()

	n, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"a"}, insights.seen)
	assert.Equal(t, []string{"a", "a"}, kafka.seen)
	assert.Empty(t, pendingIDs(t, store))
}

func TestRun_StopsWhenContextEnds(t *testing.T) {
	store := memory.NewStore()
	seedEvent(t, store, "a", time.Now())
	h := &recordingHandler{name: "h"}
	d := workers.NewOutboxDispatcher(store, workers.DispatcherConfig{PollInterval: 10 * time.Millisecond}, []workers.EventHandler{h})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		events, err := store.FetchPendingOutboxEvents(context.Background(), 10, 10)
		return err == nil && len(events) == 0
	}, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}
