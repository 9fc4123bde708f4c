package accounting_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acct(id, code string, t domain.AccountType) domain.Account {
	return domain.Account{AccountID: id, Code: code, Name: code, AccountType: t, IsActive: true}
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var chart = []domain.Account{
	acct("cash", "1000", domain.Asset),
	acct("ar", "1100", domain.Asset),
	acct("ap", "2000", domain.Liability),
	acct("vat-out", "2100", domain.Liability),
	acct("rev", "4000", domain.Revenue),
	acct("exp", "5000", domain.Expense),
	acct("vat-in", "5100", domain.Expense),
}

func invoiceDraft(amount string, tax *domain.TaxInfo) domain.Draft {
	return domain.Draft{
		DraftID: "d1",
		Intent:  domain.IntentCreateInvoice,
		Entities: domain.DraftEntities{
			Amount:         decimal.RequireFromString(amount),
			Currency:       "AED",
			Date:           time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
			Counterparty:   "Acme LLC",
			DocumentNumber: "INV-42",
			Tax:            tax,
		},
	}
}

func TestBuildLines_TaxGrossUpOnDebitSide(t *testing.T) {
	m := domain.Mapping{DebitAccountID: "ar", CreditAccountID: "rev", TaxCreditAccountID: strPtr("vat-out")}
	built, err := accounting.BuildLines(invoiceDraft("1000", &domain.TaxInfo{Rate: decPtr("5")}), chart, m)
	require.NoError(t, err)
	require.Len(t, built.Lines, 3)

	assert.Equal(t, "ar", built.Lines[0].AccountID)
	assert.Equal(t, "1050.00", built.Lines[0].Debit.StringFixed(2))
	assert.Equal(t, "rev", built.Lines[1].AccountID)
	assert.Equal(t, "1000.00", built.Lines[1].Credit.StringFixed(2))
	assert.Equal(t, "vat-out", built.Lines[2].AccountID)
	assert.Equal(t, "50.00", built.Lines[2].Credit.StringFixed(2))

	d, c := accounting.Totals(built.Lines)
	assert.Equal(t, "1050.00", d.StringFixed(2))
	assert.Equal(t, "1050.00", c.StringFixed(2))
	assert.NoError(t, accounting.EnsureBalanced(built.Lines))
}

func TestBuildLines_TaxGrossUpOnCreditSide(t *testing.T) {
	draft := invoiceDraft("200", &domain.TaxInfo{Amount: decPtr("10")})
	draft.Intent = domain.IntentCreateBill
	m := domain.Mapping{DebitAccountID: "exp", CreditAccountID: "ap", TaxDebitAccountID: strPtr("vat-in")}

	built, err := accounting.BuildLines(draft, chart, m)
	require.NoError(t, err)
	require.Len(t, built.Lines, 3)
	assert.Equal(t, "200.00", built.Lines[0].Debit.StringFixed(2))
	assert.Equal(t, "210.00", built.Lines[1].Credit.StringFixed(2))
	assert.Equal(t, "vat-in", built.Lines[2].AccountID)
	assert.Equal(t, "10.00", built.Lines[2].Debit.StringFixed(2))
	assert.NoError(t, accounting.EnsureBalanced(built.Lines))
}

func TestBuildLines_BothTaxAccounts(t *testing.T) {
	m := domain.Mapping{DebitAccountID: "ar", CreditAccountID: "rev", TaxDebitAccountID: strPtr("vat-in"), TaxCreditAccountID: strPtr("vat-out")}
	built, err := accounting.BuildLines(invoiceDraft("100", &domain.TaxInfo{Rate: decPtr("15")}), chart, m)
	require.NoError(t, err)
	require.Len(t, built.Lines, 4)
	assert.Equal(t, "100.00", built.Lines[0].Debit.StringFixed(2))
	assert.Equal(t, "100.00", built.Lines[1].Credit.StringFixed(2))
	assert.Equal(t, "15.00", built.Lines[2].Debit.StringFixed(2))
	assert.Equal(t, "15.00", built.Lines[3].Credit.StringFixed(2))
	assert.NoError(t, accounting.EnsureBalanced(built.Lines))
}

func TestBuildLines_NoTaxAccountOrZeroTax(t *testing.T) {
	plain := domain.Mapping{DebitAccountID: "ar", CreditAccountID: "rev"}

	built, err := accounting.BuildLines(invoiceDraft("100", &domain.TaxInfo{Rate: decPtr("5")}), chart, plain)
	require.NoError(t, err)
	assert.Len(t, built.Lines, 2, "tax without a tax account must not produce a line")
	assert.Equal(t, "100.00", built.Lines[0].Debit.StringFixed(2))

	withTax := domain.Mapping{DebitAccountID: "ar", CreditAccountID: "rev", TaxCreditAccountID: strPtr("vat-out")}
	built, err = accounting.BuildLines(invoiceDraft("100", &domain.TaxInfo{Rate: decPtr("0")}), chart, withTax)
	require.NoError(t, err)
	assert.Len(t, built.Lines, 2, "zero tax must not produce a line")
}

func TestBuildLines_RoundsEveryStep(t *testing.T) {
	m := domain.Mapping{DebitAccountID: "ar", CreditAccountID: "rev", TaxCreditAccountID: strPtr("vat-out")}
	built, err := accounting.BuildLines(invoiceDraft("99.995", &domain.TaxInfo{Rate: decPtr("7.5")}), chart, m)
	require.NoError(t, err)
	// 100.00 * 7.5% = 7.50
	assert.Equal(t, "100.00", built.Lines[1].Credit.StringFixed(2))
	assert.Equal(t, "7.50", built.Lines[2].Credit.StringFixed(2))
	assert.Equal(t, "107.50", built.Lines[0].Debit.StringFixed(2))
	assert.NoError(t, accounting.EnsureBalanced(built.Lines))
}

func TestBuildLines_DescriptionAndMemo(t *testing.T) {
	m := domain.Mapping{DebitAccountID: "ar", CreditAccountID: "rev"}
	built, err := accounting.BuildLines(invoiceDraft("10", nil), chart, m)
	require.NoError(t, err)
	assert.Equal(t, "create_invoice for Acme LLC", built.Description)
	assert.Equal(t, "Acme LLC | INV-42 | 2024-03-09", built.Lines[0].Memo)

	draft := invoiceDraft("10", nil)
	draft.Entities.Counterparty = ""
	draft.Entities.DocumentNumber = ""
	built, err = accounting.BuildLines(draft, chart, m)
	require.NoError(t, err)
	assert.Equal(t, "create_invoice for unknown", built.Description)
	assert.Equal(t, "2024-03-09", built.Lines[0].Memo)

	draft.Entities.Description = "March retainer"
	built, err = accounting.BuildLines(draft, chart, m)
	require.NoError(t, err)
	assert.Equal(t, "March retainer", built.Description)
}

func TestBuildLines_Failures(t *testing.T) {
	t.Run("dangling account id", func(t *testing.T) {
		m := domain.Mapping{DebitAccountID: "ghost", CreditAccountID: "rev"}
		_, err := accounting.BuildLines(invoiceDraft("10", nil), chart, m)
		require.Error(t, err)
		assert.True(t, errors.Is(err, accounting.ErrAccountMissing))
		assert.Contains(t, err.Error(), "ghost")
	})
	t.Run("inactive account", func(t *testing.T) {
		accounts := append([]domain.Account{}, chart...)
		accounts[1].IsActive = false
		m := domain.Mapping{DebitAccountID: "ar", CreditAccountID: "rev"}
		_, err := accounting.BuildLines(invoiceDraft("10", nil), accounts, m)
		assert.True(t, errors.Is(err, accounting.ErrAccountInactive))
	})
	t.Run("non positive amount", func(t *testing.T) {
		m := domain.Mapping{DebitAccountID: "ar", CreditAccountID: "rev"}
		_, err := accounting.BuildLines(invoiceDraft("0", nil), chart, m)
		assert.True(t, errors.Is(err, accounting.ErrInvalidAmount))
	})
}

func TestComputeTax(t *testing.T) {
	amount := decimal.NewFromInt(1000)
	assert.True(t, accounting.ComputeTax(nil, amount).IsZero())
	assert.Equal(t, "50.00", accounting.ComputeTax(&domain.TaxInfo{Rate: decPtr("5")}, amount).StringFixed(2))
	assert.Equal(t, "12.34", accounting.ComputeTax(&domain.TaxInfo{Rate: decPtr("5"), Amount: decPtr("12.339")}, amount).StringFixed(2))
	assert.Equal(t, "0.33", accounting.ComputeTax(&domain.TaxInfo{Rate: decPtr("33.333")}, decimal.NewFromInt(1)).StringFixed(2))
}
