package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
)

// DeliveryRepository persists delivery aggregates.
type DeliveryRepository interface {
	Add(ctx context.Context, aggregate *delivery.Delivery) error
	Update(ctx context.Context, aggregate *delivery.Delivery) error
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// GetForUpdate loads and row-locks a delivery. A delivery is always locked
	// before its offers and before any account.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// FindAwaitingDispatch lists Pending deliveries without a pending offer,
	// oldest first, created before createdBefore.
	FindAwaitingDispatch(ctx context.Context, createdBefore time.Time, limit int) ([]kernel.UUID, error)
}
