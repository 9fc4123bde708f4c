package accounting_test

import (
	"errors"
	"testing"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debit(acc, amount string) domain.JournalLine {
	return domain.JournalLine{AccountID: acc, Debit: decimal.RequireFromString(amount), Credit: decimal.Zero}
}

func credit(acc, amount string) domain.JournalLine {
	return domain.JournalLine{AccountID: acc, Debit: decimal.Zero, Credit: decimal.RequireFromString(amount)}
}

func TestEnsureBalanced(t *testing.T) {
	tests := []struct {
		name    string
		lines   []domain.JournalLine
		wantErr error
		errMsg  string
	}{
		{
			name:  "simple two line entry",
			lines: []domain.JournalLine{debit("a", "100.00"), credit("b", "100.00")},
		},
		{
			name:  "split credit side",
			lines: []domain.JournalLine{debit("a", "1050.00"), credit("b", "1000.00"), credit("c", "50.00")},
		},
		{
			name:  "sub-cent drift rounds away",
			lines: []domain.JournalLine{debit("a", "0.1"), debit("a", "0.2"), credit("b", "0.3")},
		},
		{
			name:    "unbalanced names both totals",
			lines:   []domain.JournalLine{debit("a", "100.00"), credit("b", "99.99")},
			wantErr: accounting.ErrUnbalanced,
			errMsg:  "debits 100.00 != credits 99.99",
		},
		{
			name:    "single line",
			lines:   []domain.JournalLine{debit("a", "1")},
			wantErr: accounting.ErrTooFewLines,
		},
		{
			name: "line with both sides set",
			lines: []domain.JournalLine{
				{AccountID: "a", Debit: decimal.NewFromInt(5), Credit: decimal.NewFromInt(5)},
				credit("b", "0.01"),
			},
			wantErr: accounting.ErrMalformedLine,
			errMsg:  "exactly one of debit or credit",
		},
		{
			name: "line with neither side set",
			lines: []domain.JournalLine{
				{AccountID: "a", Debit: decimal.Zero, Credit: decimal.Zero},
				credit("b", "1"),
			},
			wantErr: accounting.ErrMalformedLine,
		},
		{
			name:    "negative amount",
			lines:   []domain.JournalLine{debit("a", "-10"), credit("b", "-10")},
			wantErr: accounting.ErrMalformedLine,
			errMsg:  "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := accounting.EnsureBalanced(tt.lines)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestEnsureBalanced_GeneratedLineSets(t *testing.T) {
	// Every split of a total into n credit lines must balance against one debit line.
	for n := 1; n <= 7; n++ {
		total := decimal.RequireFromString("1234.57")
		share := accounting.Round(total.Div(decimal.NewFromInt(int64(n))))
		lines := []domain.JournalLine{debit("d", total.String())}
		remaining := total
		for i := 0; i < n-1; i++ {
			lines = append(lines, domain.JournalLine{AccountID: "c", Debit: decimal.Zero, Credit: share})
			remaining = remaining.Sub(share)
		}
		lines = append(lines, domain.JournalLine{AccountID: "c", Debit: decimal.Zero, Credit: remaining})

		require.NoError(t, accounting.EnsureBalanced(lines), "n=%d", n)
		d, c := accounting.Totals(lines)
		assert.True(t, d.Equal(c))
	}
}

func TestEntryTotal(t *testing.T) {
	lines := []domain.JournalLine{debit("a", "10.005"), debit("b", "5"), credit("c", "15.01")}
	assert.Equal(t, "15.01", accounting.EntryTotal(lines).StringFixed(2))
}
