package models

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents a row of the accounts table.
type Account struct {
	AccountID   string      `db:"account_id"`
	TenantID    string      `db:"tenant_id"`
	Code        string      `db:"code"`
	Name        string      `db:"name"`
	AccountType AccountType `db:"account_type"`
	IsActive    bool        `db:"is_active"`
	AuditFields
}

// IntentMapping represents a row of intent_account_mappings.
type IntentMapping struct {
	TenantID           string  `db:"tenant_id"`
	Intent             string  `db:"intent"`
	DebitAccountID     string  `db:"debit_account_id"`
	CreditAccountID    string  `db:"credit_account_id"`
	TaxDebitAccountID  *string `db:"tax_debit_account_id"`
	TaxCreditAccountID *string `db:"tax_credit_account_id"`
	AuditFields
}
