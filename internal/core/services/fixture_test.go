package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	portssvc "github.com/SscSPs/prompt_books/internal/core/ports/services"
	"github.com/SscSPs/prompt_books/internal/core/services"
	"github.com/SscSPs/prompt_books/internal/dto"
	"github.com/SscSPs/prompt_books/internal/platform/metrics"
	"github.com/SscSPs/prompt_books/internal/repositories/database/memory"
	"github.com/prometheus/client_golang/prometheus"
	promdto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const tenantID = "tenant-1"

var (
	admin      = domain.Actor{TenantID: tenantID, UserID: "user-admin", Role: domain.RoleAdmin}
	accountant = domain.Actor{TenantID: tenantID, UserID: "user-acct", Role: domain.RoleAccountant}
	member     = domain.Actor{TenantID: tenantID, UserID: "user-member", Role: domain.RoleMember}
	readOnly   = domain.Actor{TenantID: tenantID, UserID: "user-ro", Role: domain.RoleReadOnly}
)

// engine wires every service over one in-memory store.
type engine struct {
	store   *memory.Store
	metrics *metrics.Metrics
	svc     *portssvc.ServiceContainer
}

func newEngine() *engine {
	store := memory.NewStore()
	m := metrics.New(prometheus.NewRegistry())
	return &engine{
		store:   store,
		metrics: m,
		svc:     services.NewServiceContainer(memory.NewRepositoryProvider(store), m),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var invoiceDate = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

func invoiceRequest(amount, rate string) dto.CreateDraftRequest {
	e := domain.DraftEntities{
		Amount:         dec(amount),
		Currency:       "usd",
		Date:           invoiceDate,
		Counterparty:   "Acme LLC",
		DocumentNumber: "INV-42",
	}
	if rate != "" {
		e.Tax = &domain.TaxInfo{Rate: decPtr(rate)}
	}
	return dto.CreateDraftRequest{Intent: domain.IntentCreateInvoice, Entities: e, Confidence: decPtr("0.9")}
}

// approvedDraft creates and approves a draft, failing the test on any error.
func (e *engine) approvedDraft(t *testing.T, req dto.CreateDraftRequest) *domain.Draft {
	t.Helper()
	ctx := context.Background()
	d, err := e.svc.Draft.CreateDraft(ctx, member, req)
	require.NoError(t, err)
	approved, err := e.svc.Draft.ApproveDraft(ctx, accountant, d.DraftID)
	require.NoError(t, err)
	return approved
}

func (e *engine) accountID(t *testing.T, code string) string {
	t.Helper()
	acc, err := e.store.FindAccountByCode(context.Background(), tenantID, code)
	require.NoError(t, err)
	return acc.AccountID
}

func (e *engine) postings(t *testing.T, outcome string) float64 {
	t.Helper()
	var pb promdto.Metric
	require.NoError(t, e.metrics.PostingsTotal.WithLabelValues(outcome).Write(&pb))
	return pb.GetCounter().GetValue()
}

func (e *engine) auditFailures(t *testing.T) float64 {
	t.Helper()
	var pb promdto.Metric
	require.NoError(t, e.metrics.AuditFailures.Write(&pb))
	return pb.GetCounter().GetValue()
}

// linesByAccount indexes entry lines for order-independent assertions.
func linesByAccount(lines []domain.JournalLine) map[string]domain.JournalLine {
	out := make(map[string]domain.JournalLine, len(lines))
	for _, l := range lines {
		out[l.AccountID] = l
	}
	return out
}
