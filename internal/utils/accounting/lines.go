package accounting

import (
	"fmt"
	"strings"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/shopspring/decimal"
)

const memoSeparator = " | "

var (
	ErrAccountMissing  = fmt.Errorf("%w: account missing from chart of accounts", apperrors.ErrNotFound)
	ErrAccountInactive = fmt.Errorf("%w: account is inactive", apperrors.ErrValidation)
	ErrInvalidAmount   = fmt.Errorf("%w: draft amount must be positive", apperrors.ErrValidation)
)

var hundred = decimal.NewFromInt(100)

// BuiltEntry is the header description and lines derived from a draft.
type BuiltEntry struct {
	Description string
	Lines       []domain.JournalLine
}

// ComputeTax returns the tax amount for a draft: the verbatim amount if present,
// otherwise amount * rate / 100. Both are rounded to two places.
func ComputeTax(tax *domain.TaxInfo, amount decimal.Decimal) decimal.Decimal {
	if tax == nil {
		return decimal.Zero
	}
	if tax.Amount != nil {
		return Round(*tax.Amount)
	}
	if tax.Rate != nil {
		return Round(Round(amount).Mul(*tax.Rate).Div(hundred))
	}
	return decimal.Zero
}

// Describe returns the draft's description or "{intent} for {counterparty|unknown}".
func Describe(draft domain.Draft) string {
	if d := strings.TrimSpace(draft.Entities.Description); d != "" {
		return d
	}
	counterparty := strings.TrimSpace(draft.Entities.Counterparty)
	if counterparty == "" {
		counterparty = "unknown"
	}
	return fmt.Sprintf("%s for %s", draft.Intent, counterparty)
}

// Memo joins counterparty, document number and date with " | ", skipping empty parts.
func Memo(e domain.DraftEntities) string {
	parts := make([]string, 0, 3)
	if c := strings.TrimSpace(e.Counterparty); c != "" {
		parts = append(parts, c)
	}
	if n := strings.TrimSpace(e.DocumentNumber); n != "" {
		parts = append(parts, n)
	}
	if !e.Date.IsZero() {
		parts = append(parts, e.Date.Format("2006-01-02"))
	}
	return strings.Join(parts, memoSeparator)
}

// BuildLines turns a draft and its resolved mapping into journal lines.
//
// The principal debit and credit lines are always produced. A tax line is added only
// when the tax amount is positive and the matching tax account is configured. When
// only one side has a tax account, the opposite principal line is grossed up by the
// tax so the entry still balances.
func BuildLines(draft domain.Draft, accounts []domain.Account, mapping domain.Mapping) (*BuiltEntry, error) {
	byID := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.AccountID] = a
	}
	lookup := func(slot, id string) (*domain.Account, error) {
		acc, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s account %s", ErrAccountMissing, slot, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: %s account %s (%s)", ErrAccountInactive, slot, acc.Code, id)
		}
		return &acc, nil
	}

	debitAcc, err := lookup("debit", mapping.DebitAccountID)
	if err != nil {
		return nil, err
	}
	creditAcc, err := lookup("credit", mapping.CreditAccountID)
	if err != nil {
		return nil, err
	}
	var taxDebitAcc, taxCreditAcc *domain.Account
	if mapping.TaxDebitAccountID != nil {
		if taxDebitAcc, err = lookup("tax-debit", *mapping.TaxDebitAccountID); err != nil {
			return nil, err
		}
	}
	if mapping.TaxCreditAccountID != nil {
		if taxCreditAcc, err = lookup("tax-credit", *mapping.TaxCreditAccountID); err != nil {
			return nil, err
		}
	}

	amount := Round(draft.Entities.Amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidAmount, amount.StringFixed(MoneyPlaces))
	}
	tax := ComputeTax(draft.Entities.Tax, amount)
	if tax.IsNegative() {
		return nil, fmt.Errorf("%w: tax amount must not be negative, got %s", apperrors.ErrValidation, tax.StringFixed(MoneyPlaces))
	}

	emitTaxDebit := tax.IsPositive() && taxDebitAcc != nil
	emitTaxCredit := tax.IsPositive() && taxCreditAcc != nil

	debitAmount, creditAmount := amount, amount
	if emitTaxCredit && !emitTaxDebit {
		debitAmount = Round(debitAmount.Add(tax))
	}
	if emitTaxDebit && !emitTaxCredit {
		creditAmount = Round(creditAmount.Add(tax))
	}

	memo := Memo(draft.Entities)
	lines := make([]domain.JournalLine, 0, 4)
	lines = append(lines,
		domain.JournalLine{AccountID: debitAcc.AccountID, Debit: debitAmount, Credit: decimal.Zero, Memo: memo},
		domain.JournalLine{AccountID: creditAcc.AccountID, Debit: decimal.Zero, Credit: creditAmount, Memo: memo},
	)
	if emitTaxDebit {
		lines = append(lines, domain.JournalLine{AccountID: taxDebitAcc.AccountID, Debit: tax, Credit: decimal.Zero, Memo: memo})
	}
	if emitTaxCredit {
		lines = append(lines, domain.JournalLine{AccountID: taxCreditAcc.AccountID, Debit: decimal.Zero, Credit: tax, Memo: memo})
	}

	return &BuiltEntry{Description: Describe(draft), Lines: lines}, nil
}
