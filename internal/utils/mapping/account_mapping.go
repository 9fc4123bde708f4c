package mapping

import (
	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:   d.AccountID,
		TenantID:    d.TenantID,
		Code:        d.Code,
		Name:        d.Name,
		AccountType: models.AccountType(d.AccountType),
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:   m.AccountID,
		TenantID:    m.TenantID,
		Code:        m.Code,
		Name:        m.Name,
		AccountType: domain.AccountType(m.AccountType),
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}

// ToModelIntentMapping converts a domain IntentMapping to its row.
func ToModelIntentMapping(d domain.IntentMapping) models.IntentMapping {
	return models.IntentMapping{
		TenantID:           d.TenantID,
		Intent:             string(d.Intent),
		DebitAccountID:     d.DebitAccountID,
		CreditAccountID:    d.CreditAccountID,
		TaxDebitAccountID:  d.TaxDebitAccountID,
		TaxCreditAccountID: d.TaxCreditAccountID,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainIntentMapping converts a mapping row to the domain type.
func ToDomainIntentMapping(m models.IntentMapping) domain.IntentMapping {
	return domain.IntentMapping{
		TenantID: m.TenantID,
		Intent:   domain.Intent(m.Intent),
		Mapping: domain.Mapping{
			DebitAccountID:     m.DebitAccountID,
			CreditAccountID:    m.CreditAccountID,
			TaxDebitAccountID:  m.TaxDebitAccountID,
			TaxCreditAccountID: m.TaxCreditAccountID,
		},
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
