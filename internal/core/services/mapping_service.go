package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prompt_books/internal/core/ports/services"
	"github.com/SscSPs/prompt_books/internal/dto"
)

const entityMapping = "intent_mapping"

// convention is the fallback account-code rule for an intent. Empty tax codes mean no tax slot.
type convention struct {
	debit, credit       string
	taxDebit, taxCredit string
}

var conventions = map[domain.Intent]convention{
	domain.IntentCreateInvoice: {debit: "1100", credit: "4000", taxCredit: "2100"},
	domain.IntentCreateBill:    {debit: "5000", credit: "2000", taxDebit: "5100"},
	domain.IntentRecordPayment: {debit: "1000", credit: "1100"},
}

// mappingService resolves intents to accounts and manages explicit mappings.
type mappingService struct {
	BaseService
	mappingRepo portsrepo.MappingRepository
	accountRepo portsrepo.AccountReader
	audit       portssvc.AuditRecorder
}

// NewMappingService creates the mapping resolver.
func NewMappingService(mappingRepo portsrepo.MappingRepository, accountRepo portsrepo.AccountReader, audit portssvc.AuditRecorder) portssvc.MappingSvcFacade {
	return &mappingService{mappingRepo: mappingRepo, accountRepo: accountRepo, audit: audit}
}

var _ portssvc.MappingSvcFacade = (*mappingService)(nil)

// Resolve returns the explicit mapping verbatim when one exists. Otherwise it applies the
// code convention over the tenant's active accounts, so the result depends only on the
// chart's contents. reconcile_bank is refused; report and unknown intents resolve to nil.
func (s *mappingService) Resolve(ctx context.Context, tenantID string, intent domain.Intent) (*domain.Mapping, error) {
	if intent == domain.IntentReconcileBank {
		return nil, ErrManualResolution
	}
	conv, ok := conventions[intent]
	if !ok {
		return nil, nil
	}

	explicit, err := s.mappingRepo.FindMapping(ctx, tenantID, intent)
	switch {
	case err == nil:
		mapping := explicit.Mapping
		return &mapping, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		s.LogError(ctx, err, "Failed to load intent mapping", slog.String("intent", string(intent)))
		return nil, err
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, false)
	if err != nil {
		s.LogError(ctx, err, "Failed to load accounts for mapping fallback", slog.String("intent", string(intent)))
		return nil, err
	}
	byCode := make(map[string]string, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a.AccountID
	}

	var missing []string
	for _, code := range []string{conv.debit, conv.credit} {
		if _, ok := byCode[code]; !ok {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		cfgErr := &apperrors.ConfigurationError{
			Intent:       string(intent),
			MissingCodes: missing,
			Remediation: fmt.Sprintf("Create or reactivate account(s) %s in the chart of accounts, or save an explicit %s mapping",
				strings.Join(missing, ", "), intent),
		}
		s.LogWarn(ctx, "Convention accounts missing", slog.String("intent", string(intent)), slog.Any("missing_codes", missing))
		return nil, cfgErr
	}

	mapping := &domain.Mapping{DebitAccountID: byCode[conv.debit], CreditAccountID: byCode[conv.credit]}
	if id, ok := byCode[conv.taxDebit]; ok && conv.taxDebit != "" {
		mapping.TaxDebitAccountID = &id
	}
	if id, ok := byCode[conv.taxCredit]; ok && conv.taxCredit != "" {
		mapping.TaxCreditAccountID = &id
	}
	return mapping, nil
}

func (s *mappingService) UpsertMapping(ctx context.Context, actor domain.Actor, intent domain.Intent, req dto.UpsertMappingRequest) (*domain.IntentMapping, error) {
	if err := s.AuthorizeActor(ctx, actor, domain.Role.CanAdministerChart, "change intent mappings"); err != nil {
		return nil, err
	}
	if !intent.IsMappable() {
		return nil, fmt.Errorf("%w: %q", ErrIntentNotMappable, intent)
	}
	if req.DebitAccountID == req.CreditAccountID {
		return nil, fmt.Errorf("%w: debit and credit accounts must differ", apperrors.ErrValidation)
	}

	mapping := domain.Mapping{
		DebitAccountID:     req.DebitAccountID,
		CreditAccountID:    req.CreditAccountID,
		TaxDebitAccountID:  req.TaxDebitAccountID,
		TaxCreditAccountID: req.TaxCreditAccountID,
	}
	// Cross-tenant references are rejected here; activity is checked again at posting time.
	for _, id := range mapping.AccountIDs() {
		if _, err := s.accountRepo.FindAccountByID(ctx, actor.TenantID, id); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: account %s does not exist in this tenant", apperrors.ErrValidation, id)
			}
			return nil, err
		}
	}

	now := s.Now()
	row := domain.IntentMapping{
		TenantID:    actor.TenantID,
		Intent:      intent,
		Mapping:     mapping,
		AuditFields: domain.NewAuditFields(actor.UserID, now),
	}
	if err := s.mappingRepo.UpsertMapping(ctx, row); err != nil {
		s.LogError(ctx, err, "Failed to save intent mapping", slog.String("intent", string(intent)))
		return nil, err
	}

	changes := map[string]any{
		"debit_account_id":  mapping.DebitAccountID,
		"credit_account_id": mapping.CreditAccountID,
	}
	if mapping.TaxDebitAccountID != nil {
		changes["tax_debit_account_id"] = *mapping.TaxDebitAccountID
	}
	if mapping.TaxCreditAccountID != nil {
		changes["tax_credit_account_id"] = *mapping.TaxCreditAccountID
	}
	s.audit.Record(ctx, actor, domain.AuditMappingUpserted, entityMapping, string(intent), changes)
	s.LogInfo(ctx, "Intent mapping saved", slog.String("intent", string(intent)))
	return &row, nil
}

func (s *mappingService) GetMapping(ctx context.Context, actor domain.Actor, intent domain.Intent) (*domain.IntentMapping, error) {
	if err := s.AuthorizeActor(ctx, actor, canRead, "read intent mappings"); err != nil {
		return nil, err
	}
	if !intent.IsMappable() {
		return nil, fmt.Errorf("%w: %q", ErrIntentNotMappable, intent)
	}
	return s.mappingRepo.FindMapping(ctx, actor.TenantID, intent)
}
