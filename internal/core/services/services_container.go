package services

import (
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/prompt_books/internal/core/ports/services"
	"github.com/SscSPs/prompt_books/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// m may be nil, in which case nothing is recorded.
func NewServiceContainer(repos portsrepo.RepositoryProvider, m *metrics.Metrics) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Audit first: every writer records through it
	container.Audit = NewAuditService(repos.AuditRepo, m)

	container.Account = NewAccountService(repos.AccountRepo, container.Audit)
	container.Mapping = NewMappingService(repos.MappingRepo, repos.AccountRepo, container.Audit)

	container.Journal = NewPostingService(
		repos,
		container.Mapping,
		container.Account,
		container.Audit,
		WithPostingMetrics(m),
	)
	container.Draft = NewDraftService(repos.DraftRepo, container.Journal, container.Audit)

	return container
}
