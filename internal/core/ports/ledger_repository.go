package ports

import (
	"context"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// LedgerRepository is the append-only store of ledger entries.
type LedgerRepository interface {
	Append(ctx context.Context, entry *account.LedgerEntry) error

	// ListByAccount returns the newest entries first.
	ListByAccount(ctx context.Context, accountID kernel.UUID, limit int) ([]*account.LedgerEntry, error)

	// SumByAccount returns Σ amount over all entries of the account.
	SumByAccount(ctx context.Context, accountID kernel.UUID) (decimal.Decimal, error)
}
