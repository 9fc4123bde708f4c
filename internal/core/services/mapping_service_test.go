package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/core/services"
	"github.com/SscSPs/prompt_books/internal/dto"
	"github.com/stretchr/testify/suite"
)

type MappingServiceTestSuite struct {
	suite.Suite
	ctx context.Context
	e   *engine
}

func (s *MappingServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.e = newEngine()
}

func TestMappingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MappingServiceTestSuite))
}

func (s *MappingServiceTestSuite) seed() {
	_, err := s.e.svc.Account.EnsureDefaultChart(s.ctx, tenantID, admin.UserID)
	s.Require().NoError(err)
}

func (s *MappingServiceTestSuite) TestConventionFallback() {
	s.seed()

	tests := []struct {
		intent    domain.Intent
		debit     string
		credit    string
		taxDebit  string
		taxCredit string
	}{
		{intent: domain.IntentCreateInvoice, debit: "1100", credit: "4000", taxCredit: "2100"},
		{intent: domain.IntentCreateBill, debit: "5000", credit: "2000", taxDebit: "5100"},
		{intent: domain.IntentRecordPayment, debit: "1000", credit: "1100"},
	}
	for _, tt := range tests {
		s.Run(string(tt.intent), func() {
			m, err := s.e.svc.Mapping.Resolve(s.ctx, tenantID, tt.intent)
			s.Require().NoError(err)
			s.Require().NotNil(m)
			s.Equal(s.e.accountID(s.T(), tt.debit), m.DebitAccountID)
			s.Equal(s.e.accountID(s.T(), tt.credit), m.CreditAccountID)
			if tt.taxDebit == "" {
				s.Nil(m.TaxDebitAccountID)
			} else {
				s.Require().NotNil(m.TaxDebitAccountID)
				s.Equal(s.e.accountID(s.T(), tt.taxDebit), *m.TaxDebitAccountID)
			}
			if tt.taxCredit == "" {
				s.Nil(m.TaxCreditAccountID)
			} else {
				s.Require().NotNil(m.TaxCreditAccountID)
				s.Equal(s.e.accountID(s.T(), tt.taxCredit), *m.TaxCreditAccountID)
			}

			again, err := s.e.svc.Mapping.Resolve(s.ctx, tenantID, tt.intent)
			s.Require().NoError(err)
			s.Equal(m, again)
		})
	}
}

func (s *MappingServiceTestSuite) TestNonPostingIntents() {
	m, err := s.e.svc.Mapping.Resolve(s.ctx, tenantID, domain.IntentGenerateReport)
	s.NoError(err)
	s.Nil(m)

	_, err = s.e.svc.Mapping.Resolve(s.ctx, tenantID, domain.IntentReconcileBank)
	s.ErrorIs(err, services.ErrManualResolution)
}

func (s *MappingServiceTestSuite) TestEmptyChartNamesMissingCodes() {
	_, err := s.e.svc.Mapping.Resolve(s.ctx, tenantID, domain.IntentCreateInvoice)
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConfiguration)

	var cfgErr *apperrors.ConfigurationError
	s.Require().ErrorAs(err, &cfgErr)
	s.Equal([]string{"1100", "4000"}, cfgErr.MissingCodes)
	s.Contains(err.Error(), "1100, 4000")
}

func (s *MappingServiceTestSuite) TestMissingTaxAccountIsOptional() {
	s.seed()
	s.Require().NoError(s.e.svc.Account.DeactivateAccount(s.ctx, admin, s.e.accountID(s.T(), "2100")))

	m, err := s.e.svc.Mapping.Resolve(s.ctx, tenantID, domain.IntentCreateInvoice)
	s.Require().NoError(err)
	s.Nil(m.TaxCreditAccountID)
}

func (s *MappingServiceTestSuite) TestUpsertAndGet() {
	s.seed()
	req := dto.UpsertMappingRequest{
		DebitAccountID:  s.e.accountID(s.T(), "1000"),
		CreditAccountID: s.e.accountID(s.T(), "4000"),
	}

	saved, err := s.e.svc.Mapping.UpsertMapping(s.ctx, admin, domain.IntentCreateInvoice, req)
	s.Require().NoError(err)
	s.Equal(domain.IntentCreateInvoice, saved.Intent)
	s.Equal(tenantID, saved.TenantID)

	got, err := s.e.svc.Mapping.GetMapping(s.ctx, readOnly, domain.IntentCreateInvoice)
	s.Require().NoError(err)
	s.Equal(req.DebitAccountID, got.DebitAccountID)

	resolved, err := s.e.svc.Mapping.Resolve(s.ctx, tenantID, domain.IntentCreateInvoice)
	s.Require().NoError(err)
	s.Equal(req.DebitAccountID, resolved.DebitAccountID)
	s.Nil(resolved.TaxCreditAccountID)

	_, err = s.e.svc.Mapping.GetMapping(s.ctx, readOnly, domain.IntentCreateBill)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *MappingServiceTestSuite) TestUpsertValidation() {
	s.seed()
	cash := s.e.accountID(s.T(), "1000")
	revenue := s.e.accountID(s.T(), "4000")

	_, err := s.e.svc.Mapping.UpsertMapping(s.ctx, accountant, domain.IntentCreateInvoice, dto.UpsertMappingRequest{DebitAccountID: cash, CreditAccountID: revenue})
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.e.svc.Mapping.UpsertMapping(s.ctx, admin, domain.IntentReconcileBank, dto.UpsertMappingRequest{DebitAccountID: cash, CreditAccountID: revenue})
	s.ErrorIs(err, services.ErrIntentNotMappable)

	_, err = s.e.svc.Mapping.UpsertMapping(s.ctx, admin, domain.IntentCreateInvoice, dto.UpsertMappingRequest{DebitAccountID: cash, CreditAccountID: cash})
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Contains(err.Error(), "must differ")

	ghost := "9f0c3a4e-0000-4000-8000-000000000000"
	_, err = s.e.svc.Mapping.UpsertMapping(s.ctx, admin, domain.IntentCreateInvoice, dto.UpsertMappingRequest{DebitAccountID: cash, CreditAccountID: ghost})
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Contains(err.Error(), ghost)
}
