package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. A state transition and the
// ledger postings it triggers are committed through one UnitOfWork.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction. Calling it after Commit is harmless.
	Rollback(ctx context.Context) error

	AccountRepository() AccountRepository
	DeliveryRepository() DeliveryRepository
	OfferRepository() OfferRepository
	LedgerRepository() LedgerRepository
}
