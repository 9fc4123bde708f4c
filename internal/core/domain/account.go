package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Account represents an entry in a tenant's chart of accounts.
// Code is unique per tenant (e.g. "1100").
type Account struct {
	AccountID   string      `json:"accountID"`
	TenantID    string      `json:"tenantID"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	IsActive    bool        `json:"isActive"`
	AuditFields
}

// AccountReferences counts the rows that point at an account.
// An account may only be hard-deleted while both counts are zero.
type AccountReferences struct {
	JournalLines int `json:"journalLines"`
	Mappings     int `json:"mappings"`
}

// InUse reports whether anything references the account.
func (r AccountReferences) InUse() bool {
	return r.JournalLines > 0 || r.Mappings > 0
}
