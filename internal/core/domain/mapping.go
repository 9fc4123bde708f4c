package domain

// Intent is the kind of business event a draft describes.
type Intent string

const (
	IntentCreateInvoice  Intent = "create_invoice"
	IntentCreateBill     Intent = "create_bill"
	IntentRecordPayment  Intent = "record_payment"
	IntentReconcileBank  Intent = "reconcile_bank"
	IntentGenerateReport Intent = "generate_report"
)

// IsValid reports whether i is an intent the extraction collaborator may emit.
func (i Intent) IsValid() bool {
	switch i {
	case IntentCreateInvoice, IntentCreateBill, IntentRecordPayment, IntentReconcileBank, IntentGenerateReport:
		return true
	}
	return false
}

// IsMappable reports whether i can carry an explicit intent-to-account mapping.
func (i Intent) IsMappable() bool {
	switch i {
	case IntentCreateInvoice, IntentCreateBill, IntentRecordPayment:
		return true
	}
	return false
}

// Mapping holds the four account slots an intent posts to.
// Tax slots are optional.
type Mapping struct {
	DebitAccountID     string  `json:"debitAccountID"`
	CreditAccountID    string  `json:"creditAccountID"`
	TaxDebitAccountID  *string `json:"taxDebitAccountID,omitempty"`
	TaxCreditAccountID *string `json:"taxCreditAccountID,omitempty"`
}

// IntentMapping is the persisted per-tenant mapping row, unique on (TenantID, Intent).
type IntentMapping struct {
	TenantID string `json:"tenantID"`
	Intent   Intent `json:"intent"`
	Mapping
	AuditFields
}

// AccountIDs returns every account id referenced by the mapping.
func (m Mapping) AccountIDs() []string {
	ids := []string{m.DebitAccountID, m.CreditAccountID}
	if m.TaxDebitAccountID != nil {
		ids = append(ids, *m.TaxDebitAccountID)
	}
	if m.TaxCreditAccountID != nil {
		ids = append(ids, *m.TaxCreditAccountID)
	}
	return ids
}
