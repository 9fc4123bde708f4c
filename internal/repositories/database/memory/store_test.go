package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/repositories/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(id, code string) domain.Account {
	return domain.Account{AccountID: id, TenantID: "t1", Code: code, Name: code, AccountType: domain.Asset, IsActive: true}
}

func TestStore_AccountUniqueness(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	require.NoError(t, s.SaveAccount(ctx, account("a1", "1000")))
	assert.ErrorIs(t, s.SaveAccount(ctx, account("a2", "1000")), apperrors.ErrDuplicate)
	assert.ErrorIs(t, s.SaveAccount(ctx, account("a1", "1001")), apperrors.ErrDuplicate)

	_, err := s.FindAccountByID(ctx, "t2", "a1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_DraftVersioning(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	d := domain.Draft{DraftID: "d1", TenantID: "t1", Status: domain.DraftStatusDraft, Version: 1}
	require.NoError(t, s.SaveDraft(ctx, d))

	d.Status = domain.DraftStatusApproved
	require.NoError(t, s.UpdateDraft(ctx, d))
	assert.ErrorIs(t, s.UpdateDraft(ctx, d), apperrors.ErrConflict)

	// The update bumped the stored version to 2, so a poster holding version 1 is refused.
	applied, err := s.MarkDraftPosted(ctx, "t1", "d1", 1, "e0", "u1", time.Now())
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = s.MarkDraftPosted(ctx, "t1", "d1", 2, "e1", "u1", time.Now())
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = s.MarkDraftPosted(ctx, "t1", "d1", 3, "e2", "u1", time.Now())
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := s.FindDraftByID(ctx, "t1", "d1")
	require.NoError(t, err)
	require.NotNil(t, got.PostedEntryID)
	assert.Equal(t, "e1", *got.PostedEntryID)
}

func TestStore_EntryPerDraftIsUnique(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	draftID := "d1"
	require.NoError(t, s.CreateEntry(ctx, domain.JournalEntry{EntryID: "e1", TenantID: "t1", SourceDraftID: &draftID}))
	assert.ErrorIs(t, s.CreateEntry(ctx, domain.JournalEntry{EntryID: "e2", TenantID: "t1", SourceDraftID: &draftID}), apperrors.ErrDuplicate)

	found, err := s.FindEntryBySourceDraft(ctx, "t1", draftID)
	require.NoError(t, err)
	assert.Equal(t, "e1", found.EntryID)
}

func TestStore_FailureInjection(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	calls := 0
	s.OnCall(memory.OpSaveAccount, func() { calls++ })
	s.FailOn(memory.OpSaveAccount, nil)

	assert.ErrorIs(t, s.SaveAccount(ctx, account("a1", "1000")), memory.ErrInjected)
	s.ClearFailure(memory.OpSaveAccount)
	assert.NoError(t, s.SaveAccount(ctx, account("a1", "1000")))
	assert.Equal(t, 2, calls)

	s.Reset()
	assert.NoError(t, s.SaveAccount(ctx, account("a2", "1001")))
	assert.Equal(t, 2, calls)
}

func TestStore_OutboxLifecycle(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveOutboxEvent(ctx, domain.OutboxEvent{EventID: "ev2", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, s.SaveOutboxEvent(ctx, domain.OutboxEvent{EventID: "ev1", CreatedAt: base}))

	pending, err := s.FetchPendingOutboxEvents(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "ev1", pending[0].EventID)

	require.NoError(t, s.MarkOutboxDispatched(ctx, "ev1", base))
	require.NoError(t, s.MarkOutboxFailed(ctx, "ev2", "boom"))
	require.NoError(t, s.MarkOutboxFailed(ctx, "ev2", "boom"))

	pending, err = s.FetchPendingOutboxEvents(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, s.DeleteOutboxEvent(ctx, "missing"), apperrors.ErrNotFound)
}

func TestStore_ListDraftsPagesThroughCreatedAtTies(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	created := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"d1", "d2", "d3", "d4", "d5"} {
		d := domain.Draft{DraftID: id, TenantID: "t1", Status: domain.DraftStatusDraft, Version: 1}
		d.CreatedAt = created
		require.NoError(t, s.SaveDraft(ctx, d))
	}

	var seen []string
	var token *string
	for page := 0; page < 5; page++ {
		drafts, next, err := s.ListDrafts(ctx, "t1", nil, 2, token)
		require.NoError(t, err)
		for _, d := range drafts {
			seen = append(seen, d.DraftID)
		}
		if next == nil {
			break
		}
		token = next
	}
	assert.Equal(t, []string{"d5", "d4", "d3", "d2", "d1"}, seen)
}

func TestStore_HandlerDeliveryIsRecordedOnce(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.SaveOutboxEvent(ctx, domain.OutboxEvent{EventID: "ev1", TenantID: "t1", CreatedAt: time.Now()}))

	require.NoError(t, s.MarkOutboxHandlerDelivered(ctx, "ev1", "kafka"))
	require.NoError(t, s.MarkOutboxHandlerDelivered(ctx, "ev1", "kafka"))
	require.NoError(t, s.MarkOutboxHandlerDelivered(ctx, "ev1", "insight"))
	assert.ErrorIs(t, s.MarkOutboxHandlerDelivered(ctx, "missing", "kafka"), apperrors.ErrNotFound)

	pending, err := s.FetchPendingOutboxEvents(ctx, 10, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, []string{"kafka", "insight"}, pending[0].DeliveredTo)
	assert.True(t, pending[0].DeliveredBy("insight"))
	assert.False(t, pending[0].DeliveredBy("search_index"))
}
