package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prompt_books/internal/core/ports/services"
	"github.com/SscSPs/prompt_books/internal/dto"
	"github.com/SscSPs/prompt_books/internal/platform/metrics"
	"github.com/SscSPs/prompt_books/internal/utils/accounting"
	"github.com/SscSPs/prompt_books/internal/utils/ids"
	"github.com/SscSPs/prompt_books/internal/utils/pagination"
)

const entityJournal = "journal_entry"

// postingService writes balanced journal entries. Header, lines, the outbox event and
// the draft link form one unit of work; audit follows the commit.
type postingService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	draftRepo   portsrepo.DraftRepositoryFacade
	journalRepo portsrepo.JournalRepositoryFacade
	outboxRepo  portsrepo.OutboxRepository
	txManager   portsrepo.TransactionManager
	resolver    portssvc.MappingResolver
	chart       portssvc.ChartBootstrapper
	audit       portssvc.AuditRecorder
	metrics     *metrics.Metrics
	locks       *keyedMutex
}

// PostingServiceOption is a functional option for configuring the posting service
type PostingServiceOption func(*postingService)

// WithPostingMetrics records posting outcomes.
func WithPostingMetrics(m *metrics.Metrics) PostingServiceOption {
	return func(s *postingService) {
		s.metrics = m
	}
}

// WithPostingClock overrides the server clock used for PostedAt.
func WithPostingClock(clock func() time.Time) PostingServiceOption {
	return func(s *postingService) {
		s.Clock = clock
	}
}

// NewPostingService creates the posting coordinator.
func NewPostingService(
	repos portsrepo.RepositoryProvider,
	resolver portssvc.MappingResolver,
	chart portssvc.ChartBootstrapper,
	audit portssvc.AuditRecorder,
	options ...PostingServiceOption,
) portssvc.JournalSvcFacade {
	svc := &postingService{
		accountRepo: repos.AccountRepo,
		draftRepo:   repos.DraftRepo,
		journalRepo: repos.JournalRepo,
		outboxRepo:  repos.OutboxRepo,
		txManager:   repos.TxManager,
		resolver:    resolver,
		chart:       chart,
		audit:       audit,
		locks:       newKeyedMutex(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.JournalSvcFacade = (*postingService)(nil)

// PostApprovedDraft turns an approved draft into a posted journal entry and returns its id.
//
// Everything up to the balance check is read-only, so any failure there leaves no trace.
// A draft that already carries an entry id returns it without side effects. Concurrent
// posts of one draft are serialized in-process; across processes the conditional draft
// update and the unique source-draft index make the loser return the winner's entry id.
func (s *postingService) PostApprovedDraft(ctx context.Context, actor domain.Actor, draftID string) (entryID string, err error) {
	start := time.Now()
	outcome := metrics.OutcomeFailed
	defer func() {
		s.metrics.ObservePosting(outcome, time.Since(start).Seconds())
	}()

	if err := s.AuthorizeActor(ctx, actor, domain.Role.CanApprove, "post journal entries"); err != nil {
		outcome = metrics.OutcomeRejected
		return "", err
	}

	unlock := s.locks.Lock(actor.TenantID + "/" + draftID)
	defer unlock()

	draft, err := s.draftRepo.FindDraftByID(ctx, actor.TenantID, draftID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			outcome = metrics.OutcomeRejected
		}
		return "", err
	}
	if draft.PostedEntryID != nil {
		outcome = metrics.OutcomeIdempotent
		return *draft.PostedEntryID, nil
	}
	if draft.Status != domain.DraftStatusApproved {
		outcome = metrics.OutcomeRejected
		s.LogWarn(ctx, "Posting rejected: draft not approved", slog.String("draft_id", draftID), slog.String("status", string(draft.Status)))
		return "", fmt.Errorf("%w (draft %s is %s)", ErrNotApproved, draftID, draft.Status)
	}

	if created, err := s.chart.EnsureDefaultChart(ctx, actor.TenantID, actor.UserID); err != nil {
		s.LogWarn(ctx, "Default chart bootstrap failed, continuing",
			slog.String("tenant_id", actor.TenantID),
			slog.String("error", err.Error()))
	} else if created > 0 {
		s.LogInfo(ctx, "Default chart bootstrapped before posting", slog.Int("created", created))
	}

	built, err := s.buildDraftEntry(ctx, actor.TenantID, draft)
	if err != nil {
		outcome = metrics.OutcomeRejected
		s.LogWarn(ctx, "Posting rejected", slog.String("draft_id", draftID), slog.String("error", err.Error()))
		return "", err
	}

	now := s.Now()
	entry := s.newEntry(actor, draft.Entities.Date, built.Description, now)
	entry.SourceDraftID = &draft.DraftID
	entry.ApprovedBy = draft.ApprovedBy
	lines := attachLines(entry.EntryID, built.Lines)

	event, err := newJournalPostedEvent(entry, lines, actor, draft)
	if err != nil {
		return "", err
	}

	link := func(txCtx context.Context) error {
		applied, err := s.draftRepo.MarkDraftPosted(txCtx, actor.TenantID, draftID, draft.Version, entry.EntryID, actor.UserID, now)
		if err != nil {
			return fmt.Errorf("link draft to journal entry: %w", err)
		}
		if !applied {
			return errDraftRaced
		}
		return nil
	}

	writeOutcome, err := s.writeEntry(ctx, entry, lines, event, link)
	if err != nil {
		if errors.Is(err, errDraftRaced) || errors.Is(err, apperrors.ErrDuplicate) {
			if winner, ok := s.winningEntry(ctx, actor.TenantID, draftID); ok {
				outcome = metrics.OutcomeIdempotent
				s.LogInfo(ctx, "Draft posted concurrently, returning existing entry",
					slog.String("draft_id", draftID), slog.String("entry_id", winner))
				return winner, nil
			}
		}
		outcome = writeOutcome
		if errors.Is(err, errDraftRaced) {
			s.LogWarn(ctx, "Draft changed while posting, entry discarded", slog.String("draft_id", draftID))
			return "", fmt.Errorf("%w: draft %s changed while it was being posted, review it and post again", ErrStaleDraftVersion, draftID)
		}
		return "", err
	}

	outcome = metrics.OutcomePosted
	s.audit.Record(ctx, actor, domain.AuditJournalPosted, entityJournal, entry.EntryID, map[string]any{
		"draft_id":   draftID,
		"line_count": len(lines),
		"total":      accounting.EntryTotal(lines).StringFixed(accounting.MoneyPlaces),
	})
	s.LogInfo(ctx, "Draft posted",
		slog.String("draft_id", draftID),
		slog.String("entry_id", entry.EntryID),
		slog.Int("line_count", len(lines)))
	return entry.EntryID, nil
}

// CreateManualJournalEntry posts a hand-entered entry without a draft.
// Every account must be active and belong to the tenant, and the lines must balance.
func (s *postingService) CreateManualJournalEntry(ctx context.Context, actor domain.Actor, req dto.ManualJournalRequest) (*domain.JournalEntry, error) {
	start := time.Now()
	outcome := metrics.OutcomeFailed
	defer func() {
		s.metrics.ObservePosting(outcome, time.Since(start).Seconds())
	}()

	if err := s.AuthorizeActor(ctx, actor, domain.Role.CanApprove, "post journal entries"); err != nil {
		outcome = metrics.OutcomeRejected
		return nil, err
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		outcome = metrics.OutcomeRejected
		return nil, ErrDescriptionMissing
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, actor.TenantID, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to load accounts for manual entry")
		return nil, err
	}
	byID := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.AccountID] = a
	}

	lines := make([]domain.JournalLine, 0, len(req.Lines))
	for i, l := range req.Lines {
		acc, ok := byID[l.AccountID]
		if !ok {
			outcome = metrics.OutcomeRejected
			return nil, fmt.Errorf("%w: line %d account %s", accounting.ErrAccountMissing, i+1, l.AccountID)
		}
		if !acc.IsActive {
			outcome = metrics.OutcomeRejected
			return nil, fmt.Errorf("%w: line %d account %s (%s)", accounting.ErrAccountInactive, i+1, acc.Code, acc.AccountID)
		}
		lines = append(lines, domain.JournalLine{
			AccountID: l.AccountID,
			Debit:     accounting.Round(l.Debit),
			Credit:    accounting.Round(l.Credit),
			Memo:      strings.TrimSpace(l.Memo),
		})
	}
	if err := accounting.EnsureBalanced(lines); err != nil {
		outcome = metrics.OutcomeRejected
		s.LogWarn(ctx, "Manual journal rejected", slog.String("error", err.Error()))
		return nil, err
	}

	now := s.Now()
	entry := s.newEntry(actor, req.Date, description, now)
	approver := actor.UserID
	entry.ApprovedBy = &approver
	lines = attachLines(entry.EntryID, lines)

	event, err := newJournalPostedEvent(entry, lines, actor, nil)
	if err != nil {
		return nil, err
	}
	writeOutcome, err := s.writeEntry(ctx, entry, lines, event, nil)
	if err != nil {
		outcome = writeOutcome
		return nil, err
	}

	outcome = metrics.OutcomePosted
	entry.Lines = lines
	s.audit.Record(ctx, actor, domain.AuditJournalManualPosted, entityJournal, entry.EntryID, map[string]any{
		"line_count": len(lines),
		"total":      accounting.EntryTotal(lines).StringFixed(accounting.MoneyPlaces),
	})
	s.LogInfo(ctx, "Manual journal entry posted", slog.String("entry_id", entry.EntryID), slog.Int("line_count", len(lines)))
	return &entry, nil
}

func (s *postingService) GetJournalEntry(ctx context.Context, actor domain.Actor, entryID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeActor(ctx, actor, canRead, "read journal entries"); err != nil {
		return nil, err
	}
	return s.journalRepo.FindEntryByID(ctx, actor.TenantID, entryID)
}

func (s *postingService) ListJournalEntries(ctx context.Context, actor domain.Actor, params dto.ListJournalsParams) ([]domain.JournalEntry, *string, error) {
	if err := s.AuthorizeActor(ctx, actor, canRead, "read journal entries"); err != nil {
		return nil, nil, err
	}
	entries, next, err := s.journalRepo.ListEntries(ctx, actor.TenantID, pagination.ClampLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries", slog.String("tenant_id", actor.TenantID))
		return nil, nil, err
	}
	return entries, next, nil
}

// buildDraftEntry resolves, builds and validates without writing anything.
func (s *postingService) buildDraftEntry(ctx context.Context, tenantID string, draft *domain.Draft) (*accounting.BuiltEntry, error) {
	mapping, err := s.resolver.Resolve(ctx, tenantID, draft.Intent)
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMapping, draft.Intent)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, true)
	if err != nil {
		return nil, err
	}
	built, err := accounting.BuildLines(*draft, accounts, *mapping)
	if err != nil {
		return nil, err
	}
	if err := accounting.EnsureBalanced(built.Lines); err != nil {
		return nil, err
	}
	return built, nil
}

// writeEntry runs the durable section. If it fails after the header insert and the
// header is still there afterwards, the store did not roll back, so the header, its
// lines and the outbox event are deleted by hand.
func (s *postingService) writeEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, event domain.OutboxEvent, link func(context.Context) error) (string, error) {
	headerWritten := false
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.journalRepo.CreateEntry(txCtx, entry); err != nil {
			return fmt.Errorf("insert journal header: %w", err)
		}
		headerWritten = true
		if err := s.journalRepo.CreateLines(txCtx, lines); err != nil {
			return fmt.Errorf("insert journal lines for entry %s: %w", entry.EntryID, err)
		}
		if err := s.outboxRepo.SaveOutboxEvent(txCtx, event); err != nil {
			return fmt.Errorf("record outbox event: %w", err)
		}
		if link != nil {
			return link(txCtx)
		}
		return nil
	})
	if err == nil {
		return metrics.OutcomePosted, nil
	}
	if !headerWritten {
		return metrics.OutcomeFailed, err
	}
	return s.compensate(ctx, entry, event, err)
}

func (s *postingService) compensate(ctx context.Context, entry domain.JournalEntry, event domain.OutboxEvent, cause error) (string, error) {
	cleanupCtx := context.WithoutCancel(ctx)
	logger := s.GetLogger(ctx).With(slog.String("entry_id", entry.EntryID))

	exists, err := s.journalRepo.EntryExists(cleanupCtx, entry.TenantID, entry.EntryID)
	if err != nil {
		logger.Error("Cannot verify journal header after failed write", slog.String("error", err.Error()), slog.String("cause", cause.Error()))
		return metrics.OutcomePartialWrite, fmt.Errorf("%w: journal entry %s may be orphaned (check failed: %v): %w",
			apperrors.ErrPartialWrite, entry.EntryID, err, cause)
	}
	if !exists {
		return metrics.OutcomeFailed, cause
	}

	if err := s.journalRepo.DeleteEntry(cleanupCtx, entry.TenantID, entry.EntryID); err != nil {
		logger.Error("Compensating delete failed, journal header orphaned",
			slog.String("error", err.Error()),
			slog.String("cause", cause.Error()))
		return metrics.OutcomePartialWrite, fmt.Errorf("%w: journal entry %s was left without lines and could not be removed (%v): %w",
			apperrors.ErrPartialWrite, entry.EntryID, err, cause)
	}
	if err := s.outboxRepo.DeleteOutboxEvent(cleanupCtx, event.EventID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to discard outbox event of compensated entry",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()))
	}
	logger.Warn("Journal write failed, header removed by compensating delete", slog.String("cause", cause.Error()))
	return metrics.OutcomeCompensated, cause
}

// winningEntry finds the entry another poster created for draftID.
func (s *postingService) winningEntry(ctx context.Context, tenantID, draftID string) (string, bool) {
	draft, err := s.draftRepo.FindDraftByID(ctx, tenantID, draftID)
	if err == nil && draft.PostedEntryID != nil {
		return *draft.PostedEntryID, true
	}
	entry, err := s.journalRepo.FindEntryBySourceDraft(ctx, tenantID, draftID)
	if err == nil {
		return entry.EntryID, true
	}
	return "", false
}

func (s *postingService) newEntry(actor domain.Actor, date time.Time, description string, now time.Time) domain.JournalEntry {
	if date.IsZero() {
		date = now
	}
	postedAt := now
	return domain.JournalEntry{
		EntryID:     ids.NewUUID(),
		TenantID:    actor.TenantID,
		EntryDate:   date,
		Description: description,
		Status:      domain.JournalPosted,
		PostedAt:    &postedAt,
		AuditFields: domain.NewAuditFields(actor.UserID, now),
	}
}

func attachLines(entryID string, lines []domain.JournalLine) []domain.JournalLine {
	out := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		l.LineID = ids.NewUUID()
		l.EntryID = entryID
		out[i] = l
	}
	return out
}

func newJournalPostedEvent(entry domain.JournalEntry, lines []domain.JournalLine, actor domain.Actor, draft *domain.Draft) (domain.OutboxEvent, error) {
	payload := domain.JournalPostedPayload{
		EntryID:     entry.EntryID,
		TenantID:    entry.TenantID,
		EntryDate:   entry.EntryDate,
		Description: entry.Description,
		Total:       accounting.EntryTotal(lines),
		LineCount:   len(lines),
		PostedBy:    actor.UserID,
		PostedAt:    *entry.PostedAt,
	}
	if len(lines) > 0 {
		payload.Memo = lines[0].Memo
	}
	if draft != nil {
		payload.DraftID = draft.DraftID
		payload.Intent = draft.Intent
		payload.Counterparty = draft.Entities.Counterparty
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.OutboxEvent{}, fmt.Errorf("encode %s payload: %w", domain.TopicJournalPosted, err)
	}
	return domain.OutboxEvent{
		EventID:     ids.NewULID(),
		TenantID:    entry.TenantID,
		Topic:       domain.TopicJournalPosted,
		AggregateID: entry.EntryID,
		Payload:     raw,
		CreatedAt:   *entry.PostedAt,
	}, nil
}
