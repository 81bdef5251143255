// Package ports defines the contracts between the dispatch core and its
// infrastructure: persistence, route distance, push delivery, fleet
// operations, locking and time.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
)

// AccountRepository persists wallet holders.
type AccountRepository interface {
	// Add persists a new account.
	Add(ctx context.Context, aggregate *account.Account) error

	// Update persists changes guarded by the aggregate's version. A stale
	// version fails with errs.ErrConcurrentModification; on success the
	// aggregate's version is advanced.
	Update(ctx context.Context, aggregate *account.Account) error

	// Get loads an account without locking it.
	Get(ctx context.Context, id kernel.UUID) (*account.Account, error)

	// GetForUpdate loads and row-locks an account until the transaction ends.
	// Callers locking several accounts must do so in ascending id order.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*account.Account, error)

	// FindDispatchable returns online, verified couriers without an active
	// delivery whose last position lies within radiusKm of center. The result
	// is a coarse pre-filter; the matcher applies the exact rules.
	FindDispatchable(ctx context.Context, center kernel.Location, radiusKm float64) ([]*account.Account, error)
}
