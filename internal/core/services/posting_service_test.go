package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/core/services"
	"github.com/SscSPs/prompt_books/internal/dto"
	"github.com/SscSPs/prompt_books/internal/platform/metrics"
	"github.com/SscSPs/prompt_books/internal/repositories/database/memory"
	"github.com/SscSPs/prompt_books/internal/utils/accounting"
	"github.com/stretchr/testify/suite"
)

type PostingServiceTestSuite struct {
	suite.Suite
	ctx context.Context
	e   *engine
}

func (s *PostingServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.e = newEngine()
}

func TestPostingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostingServiceTestSuite))
}

func (s *PostingServiceTestSuite) TestInvoiceGrossUp() {
	draft := s.e.approvedDraft(s.T(), invoiceRequest("1000", "5"))

	entryID, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.Require().NoError(err)
	s.Require().NotEmpty(entryID)

	entry, err := s.e.svc.Journal.GetJournalEntry(s.ctx, readOnly, entryID)
	s.Require().NoError(err)
	s.Equal(domain.JournalPosted, entry.Status)
	s.Equal(invoiceDate, entry.EntryDate)
	s.Equal("create_invoice for Acme LLC", entry.Description)
	s.Require().NotNil(entry.SourceDraftID)
	s.Equal(draft.DraftID, *entry.SourceDraftID)
	s.Require().NotNil(entry.ApprovedBy)
	s.Equal(accountant.UserID, *entry.ApprovedBy)
	s.NotNil(entry.PostedAt)

	s.Require().Len(entry.Lines, 3)
	byAcc := linesByAccount(entry.Lines)
	s.True(dec("1050").Equal(byAcc[s.e.accountID(s.T(), "1100")].Debit))
	s.True(dec("1000").Equal(byAcc[s.e.accountID(s.T(), "4000")].Credit))
	s.True(dec("50").Equal(byAcc[s.e.accountID(s.T(), "2100")].Credit))
	s.NoError(accounting.EnsureBalanced(entry.Lines))

	posted, err := s.e.svc.Draft.GetDraft(s.ctx, readOnly, draft.DraftID)
	s.Require().NoError(err)
	s.Equal(domain.DraftStatusPosted, posted.Status)
	s.Require().NotNil(posted.PostedEntryID)
	s.Equal(entryID, *posted.PostedEntryID)

	events := s.e.store.OutboxEvents()
	s.Require().Len(events, 1)
	s.Equal(domain.TopicJournalPosted, events[0].Topic)
	s.Equal(entryID, events[0].AggregateID)
	s.Equal(1.0, s.e.postings(s.T(), metrics.OutcomePosted))
}

func (s *PostingServiceTestSuite) TestPostIsIdempotent() {
	draft := s.e.approvedDraft(s.T(), invoiceRequest("250", ""))

	first, err := s.e.svc.Draft.PostDraft(s.ctx, accountant, draft.DraftID)
	s.Require().NoError(err)
	second, err := s.e.svc.Draft.PostDraft(s.ctx, admin, draft.DraftID)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(1, s.e.store.EntryCount())
	s.Equal(2, s.e.store.LineCount())
	s.Len(s.e.store.OutboxEvents(), 1)
	s.Equal(1.0, s.e.postings(s.T(), metrics.OutcomeIdempotent))
}

func (s *PostingServiceTestSuite) TestUnapprovedDraftIsRejected() {
	draft, err := s.e.svc.Draft.CreateDraft(s.ctx, member, invoiceRequest("100", ""))
	s.Require().NoError(err)

	_, err = s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.Require().Error(err)
	s.ErrorIs(err, services.ErrNotApproved)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.Contains(err.Error(), "is draft")
	s.Zero(s.e.store.EntryCount())
	s.Empty(s.e.store.OutboxEvents())
}

func (s *PostingServiceTestSuite) TestEditAfterApprovalBlocksPosting() {
	draft := s.e.approvedDraft(s.T(), invoiceRequest("100", ""))
	edited, err := s.e.svc.Draft.EditDraft(s.ctx, member, draft.DraftID, dto.UpdateDraftRequest{Confidence: decPtr("0.5")})
	s.Require().NoError(err)
	s.Equal(domain.DraftStatusDraft, edited.Status)
	s.Nil(edited.ApprovedBy)

	_, err = s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.ErrorIs(err, services.ErrNotApproved)
	s.Zero(s.e.store.EntryCount())
}

func (s *PostingServiceTestSuite) TestMemberCannotPost() {
	draft := s.e.approvedDraft(s.T(), invoiceRequest("100", ""))

	_, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, member, draft.DraftID)
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.e.svc.Journal.PostApprovedDraft(s.ctx, domain.Actor{Role: domain.RoleAdmin}, draft.DraftID)
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.Zero(s.e.store.EntryCount())
}

func (s *PostingServiceTestSuite) TestUnknownDraftIsNotFound() {
	_, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PostingServiceTestSuite) TestLineFailureIsCompensated() {
	draft := s.e.approvedDraft(s.T(), invoiceRequest("1000", "5"))
	s.e.store.FailOn(memory.OpCreateLines, nil)

	_, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.Require().Error(err)
	s.ErrorIs(err, memory.ErrInjected)
	s.Zero(s.e.store.EntryCount())
	s.Zero(s.e.store.LineCount())
	s.Empty(s.e.store.OutboxEvents())
	s.Equal(1.0, s.e.postings(s.T(), metrics.OutcomeCompensated))

	stored, err := s.e.svc.Draft.GetDraft(s.ctx, readOnly, draft.DraftID)
	s.Require().NoError(err)
	s.Equal(domain.DraftStatusApproved, stored.Status)
	s.Nil(stored.PostedEntryID)

	// A retry after the fault clears posts normally.
	s.e.store.ClearFailure(memory.OpCreateLines)
	entryID, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.Require().NoError(err)
	s.NotEmpty(entryID)
	s.Equal(1, s.e.store.EntryCount())
	s.Equal(3, s.e.store.LineCount())
}

func (s *PostingServiceTestSuite) TestLinkFailureRemovesHeaderLinesAndEvent() {
	draft := s.e.approvedDraft(s.T(), invoiceRequest("1000", "5"))
	s.e.store.FailOn(memory.OpMarkDraftPosted, errors.New("draft table locked"))

	_, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.Require().Error(err)
	s.Contains(err.Error(), "draft table locked")
	s.Zero(s.e.store.EntryCount())
	s.Zero(s.e.store.LineCount())
	s.Empty(s.e.store.OutboxEvents())
}

func (s *PostingServiceTestSuite) TestFailedCompensationIsPartialWrite() {
	draft := s.e.approvedDraft(s.T(), invoiceRequest("1000", "5"))
	s.e.store.FailOn(memory.OpCreateLines, nil)
	s.e.store.FailOn(memory.OpDeleteEntry, errors.New("connection lost"))

	_, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrPartialWrite)
	s.ErrorIs(err, memory.ErrInjected)
	s.Equal(1.0, s.e.postings(s.T(), metrics.OutcomePartialWrite))

	entries, _, listErr := s.e.store.ListEntries(s.ctx, tenantID, 10, nil)
	s.Require().NoError(listErr)
	s.Require().Len(entries, 1)
	s.Contains(err.Error(), entries[0].EntryID)
	s.Empty(entries[0].Lines)
}

func (s *PostingServiceTestSuite) TestLostRaceReturnsWinningEntry() {
	draft := s.e.approvedDraft(s.T(), invoiceRequest("300", ""))

	// A second process shares the store but not the in-process lock.
	rival := services.NewServiceContainer(memory.NewRepositoryProvider(s.e.store), nil)
	var raced atomic.Bool
	var rivalID string
	var rivalErr error
	s.e.store.OnCall(memory.OpCreateEntry, func() {
		if raced.CompareAndSwap(false, true) {
			rivalID, rivalErr = rival.Journal.PostApprovedDraft(s.ctx, admin, draft.DraftID)
		}
	})

	entryID, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.Require().NoError(err)
	s.Require().NoError(rivalErr)
	s.Equal(rivalID, entryID)
	s.Equal(1, s.e.store.EntryCount())
	s.Equal(2, s.e.store.LineCount())
	s.Len(s.e.store.OutboxEvents(), 1)
}

func (s *PostingServiceTestSuite) TestEditAndReapproveDuringPostDiscardsStaleEntry() {
	draft := s.e.approvedDraft(s.T(), invoiceRequest("100", ""))

	var edited atomic.Bool
	var editErr error
	s.e.store.OnCall(memory.OpCreateEntry, func() {
		if !edited.CompareAndSwap(false, true) {
			return
		}
		entities := invoiceRequest("999", "").Entities
		if _, editErr = s.e.svc.Draft.EditDraft(s.ctx, member, draft.DraftID, dto.UpdateDraftRequest{Entities: &entities}); editErr != nil {
			return
		}
		_, editErr = s.e.svc.Draft.ApproveDraft(s.ctx, accountant, draft.DraftID)
	})

	_, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.Require().NoError(editErr)
	s.Require().Error(err)
	s.ErrorIs(err, services.ErrStaleDraftVersion)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.Zero(s.e.store.EntryCount())
	s.Zero(s.e.store.LineCount())
	s.Empty(s.e.store.OutboxEvents())

	stored, err := s.e.svc.Draft.GetDraft(s.ctx, readOnly, draft.DraftID)
	s.Require().NoError(err)
	s.Equal(domain.DraftStatusApproved, stored.Status)
	s.Nil(stored.PostedEntryID)
	s.True(dec("999").Equal(stored.Entities.Amount))

	// Posting again uses the reviewed content.
	entryID, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.Require().NoError(err)
	entry, err := s.e.svc.Journal.GetJournalEntry(s.ctx, readOnly, entryID)
	s.Require().NoError(err)
	s.Require().Len(entry.Lines, 2)
	for _, l := range entry.Lines {
		s.True(dec("999").Equal(l.Debit.Add(l.Credit)), "line %s", l.AccountID)
	}
}

func (s *PostingServiceTestSuite) TestReconcileBankNeedsManualResolution() {
	req := invoiceRequest("80", "")
	req.Intent = domain.IntentReconcileBank
	draft := s.e.approvedDraft(s.T(), req)

	_, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.ErrorIs(err, services.ErrManualResolution)
	s.ErrorIs(err, apperrors.ErrConfiguration)
	s.Zero(s.e.store.EntryCount())
	s.Equal(1.0, s.e.postings(s.T(), metrics.OutcomeRejected))
}

func (s *PostingServiceTestSuite) TestReportIntentDoesNotPost() {
	req := invoiceRequest("80", "")
	req.Intent = domain.IntentGenerateReport
	draft := s.e.approvedDraft(s.T(), req)

	_, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.ErrorIs(err, services.ErrNoMapping)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Zero(s.e.store.EntryCount())
}

func (s *PostingServiceTestSuite) TestDeactivatedConventionAccountIsConfigurationError() {
	_, err := s.e.svc.Account.EnsureDefaultChart(s.ctx, tenantID, admin.UserID)
	s.Require().NoError(err)
	s.Require().NoError(s.e.svc.Account.DeactivateAccount(s.ctx, admin, s.e.accountID(s.T(), "4000")))
	draft := s.e.approvedDraft(s.T(), invoiceRequest("100", ""))

	_, err = s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.Require().Error(err)
	var cfgErr *apperrors.ConfigurationError
	s.Require().ErrorAs(err, &cfgErr)
	s.Equal([]string{"4000"}, cfgErr.MissingCodes)
	s.Contains(err.Error(), "save an explicit create_invoice mapping")
	s.Zero(s.e.store.EntryCount())
}

func (s *PostingServiceTestSuite) TestExplicitMappingWins() {
	_, err := s.e.svc.Account.EnsureDefaultChart(s.ctx, tenantID, admin.UserID)
	s.Require().NoError(err)
	supplies, err := s.e.svc.Account.CreateAccount(s.ctx, admin, dto.CreateAccountRequest{Code: "5200", Name: "Supplies", AccountType: domain.Expense})
	s.Require().NoError(err)
	_, err = s.e.svc.Mapping.UpsertMapping(s.ctx, admin, domain.IntentCreateBill, dto.UpsertMappingRequest{
		DebitAccountID:  supplies.AccountID,
		CreditAccountID: s.e.accountID(s.T(), "2000"),
	})
	s.Require().NoError(err)

	req := invoiceRequest("200", "5")
	req.Intent = domain.IntentCreateBill
	draft := s.e.approvedDraft(s.T(), req)

	entryID, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.Require().NoError(err)
	entry, err := s.e.svc.Journal.GetJournalEntry(s.ctx, readOnly, entryID)
	s.Require().NoError(err)

	// No tax slot in the explicit mapping: the tax is not split out.
	s.Require().Len(entry.Lines, 2)
	byAcc := linesByAccount(entry.Lines)
	s.True(dec("200").Equal(byAcc[supplies.AccountID].Debit))
	s.True(dec("200").Equal(byAcc[s.e.accountID(s.T(), "2000")].Credit))
}

func (s *PostingServiceTestSuite) TestAuditFailureDoesNotFailPosting() {
	draft := s.e.approvedDraft(s.T(), invoiceRequest("100", ""))
	s.e.store.FailOn(memory.OpSaveAudit, nil)

	entryID, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.Require().NoError(err)
	s.NotEmpty(entryID)
	s.GreaterOrEqual(s.e.auditFailures(s.T()), 1.0)
}

func (s *PostingServiceTestSuite) TestPostingWritesAuditEvent() {
	draft := s.e.approvedDraft(s.T(), invoiceRequest("100", ""))
	entryID, err := s.e.svc.Journal.PostApprovedDraft(s.ctx, accountant, draft.DraftID)
	s.Require().NoError(err)

	events, _, err := s.e.svc.Audit.ListAuditEvents(s.ctx, readOnly, dto.ListAuditParams{Entity: "journal_entry", EntityID: entryID})
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(domain.AuditJournalPosted, events[0].Action)
	s.Equal(accountant.UserID, events[0].ActorID)
	s.Equal(draft.DraftID, events[0].Changes["draft_id"])
	s.Equal(2, events[0].Changes["line_count"])
}

func (s *PostingServiceTestSuite) TestManualJournalEntry() {
	_, err := s.e.svc.Account.EnsureDefaultChart(s.ctx, tenantID, admin.UserID)
	s.Require().NoError(err)
	cash, equity := s.e.accountID(s.T(), "1000"), s.e.accountID(s.T(), "3000")

	entry, err := s.e.svc.Journal.CreateManualJournalEntry(s.ctx, accountant, dto.ManualJournalRequest{
		Date:        invoiceDate,
		Description: "  Owner contribution ",
		Lines: []dto.ManualJournalLineRequest{
			{AccountID: cash, Debit: dec("500")},
			{AccountID: equity, Credit: dec("500"), Memo: "capital"},
		},
	})
	s.Require().NoError(err)
	s.Equal("Owner contribution", entry.Description)
	s.Nil(entry.SourceDraftID)
	s.Len(entry.Lines, 2)
	s.Len(s.e.store.OutboxEvents(), 1)

	list, next, err := s.e.svc.Journal.ListJournalEntries(s.ctx, readOnly, dto.ListJournalsParams{})
	s.Require().NoError(err)
	s.Nil(next)
	s.Require().Len(list, 1)
	s.Equal(entry.EntryID, list[0].EntryID)
}

func (s *PostingServiceTestSuite) TestManualJournalRejectsUnbalancedAndInactive() {
	_, err := s.e.svc.Account.EnsureDefaultChart(s.ctx, tenantID, admin.UserID)
	s.Require().NoError(err)
	cash, equity := s.e.accountID(s.T(), "1000"), s.e.accountID(s.T(), "3000")

	_, err = s.e.svc.Journal.CreateManualJournalEntry(s.ctx, accountant, dto.ManualJournalRequest{
		Date:        invoiceDate,
		Description: "Typo",
		Lines: []dto.ManualJournalLineRequest{
			{AccountID: cash, Debit: dec("100")},
			{AccountID: equity, Credit: dec("99.99")},
		},
	})
	s.ErrorIs(err, accounting.ErrUnbalanced)
	s.Contains(err.Error(), "debits 100.00 != credits 99.99")

	s.Require().NoError(s.e.svc.Account.DeactivateAccount(s.ctx, admin, equity))
	_, err = s.e.svc.Journal.CreateManualJournalEntry(s.ctx, accountant, dto.ManualJournalRequest{
		Date:        invoiceDate,
		Description: "Inactive",
		Lines: []dto.ManualJournalLineRequest{
			{AccountID: cash, Debit: dec("100")},
			{AccountID: equity, Credit: dec("100")},
		},
	})
	s.ErrorIs(err, accounting.ErrAccountInactive)
	s.Contains(err.Error(), "3000")

	_, err = s.e.svc.Journal.CreateManualJournalEntry(s.ctx, accountant, dto.ManualJournalRequest{
		Date:        invoiceDate,
		Description: "Foreign",
		Lines: []dto.ManualJournalLineRequest{
			{AccountID: cash, Debit: dec("100")},
			{AccountID: "00000000-0000-0000-0000-000000000000", Credit: dec("100")},
		},
	})
	s.ErrorIs(err, accounting.ErrAccountMissing)
	s.Zero(s.e.store.EntryCount())
}
