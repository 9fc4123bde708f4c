package accounting

import (
	"errors"
	"fmt"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places every monetary value is rounded to.
const MoneyPlaces = 2

var (
	ErrUnbalanced     = fmt.Errorf("%w: journal entry does not balance", apperrors.ErrValidation)
	ErrMalformedLine  = fmt.Errorf("%w: malformed journal line", apperrors.ErrValidation)
	ErrTooFewLines    = fmt.Errorf("%w: journal entry must have at least two lines", apperrors.ErrValidation)
	errNegativeAmount = errors.New("amounts must not be negative")
)

// Round rounds a monetary amount to MoneyPlaces.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Totals returns the rounded debit and credit sums of lines.
func Totals(lines []domain.JournalLine) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return Round(debits), Round(credits)
}

// ValidateLine enforces that a line has exactly one non-zero, non-negative side.
func ValidateLine(l domain.JournalLine) error {
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return fmt.Errorf("%w: account %s: %v (debit %s, credit %s)", ErrMalformedLine, l.AccountID, errNegativeAmount, l.Debit.StringFixed(MoneyPlaces), l.Credit.StringFixed(MoneyPlaces))
	}
	hasDebit := !Round(l.Debit).IsZero()
	hasCredit := !Round(l.Credit).IsZero()
	if hasDebit == hasCredit {
		return fmt.Errorf("%w: account %s must have exactly one of debit or credit set (debit %s, credit %s)",
			ErrMalformedLine, l.AccountID, l.Debit.StringFixed(MoneyPlaces), l.Credit.StringFixed(MoneyPlaces))
	}
	return nil
}

// EnsureBalanced is the single gate run immediately before any ledger write.
// It checks every line and then that round(Σdebit, 2) == round(Σcredit, 2).
// It has no side effects.
func EnsureBalanced(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewLines, len(lines))
	}
	for _, l := range lines {
		if err := ValidateLine(l); err != nil {
			return err
		}
	}
	debits, credits := Totals(lines)
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits %s != credits %s",
			ErrUnbalanced, debits.StringFixed(MoneyPlaces), credits.StringFixed(MoneyPlaces))
	}
	return nil
}

// EntryTotal is the economic value of a balanced entry (its debit side).
func EntryTotal(lines []domain.JournalLine) decimal.Decimal {
	debits, _ := Totals(lines)
	return debits
}
