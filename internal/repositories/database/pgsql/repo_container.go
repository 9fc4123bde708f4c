package pgsql

import (
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds every repository on one pool. Writes made through the
// ctx handed out by TxManager.WithinTx share its transaction.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: newPgxAccountRepository(dbPool),
		MappingRepo: newPgxMappingRepository(dbPool),
		DraftRepo:   newPgxDraftRepository(dbPool),
		JournalRepo: newPgxJournalRepository(dbPool),
		AuditRepo:   newPgxAuditRepository(dbPool),
		OutboxRepo:  newPgxOutboxRepository(dbPool),
		TxManager:   newTxManager(dbPool),
	}
}
