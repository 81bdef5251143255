package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
)

// OfferRepository persists offers. Storage enforces at most one pending offer
// per delivery and per courier; a violating Add fails with errs.ErrConcurrentModification.
type OfferRepository interface {
	Add(ctx context.Context, aggregate *offer.Offer) error
	Update(ctx context.Context, aggregate *offer.Offer) error
	Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error)
	GetForUpdate(ctx context.Context, id kernel.UUID) (*offer.Offer, error)

	// GetPendingByDelivery returns the delivery's pending offer or errs.ErrObjectNotFound.
	GetPendingByDelivery(ctx context.Context, deliveryID kernel.UUID) (*offer.Offer, error)

	// FindPendingByCourier lists a courier's pending offers that are not yet due at now.
	FindPendingByCourier(ctx context.Context, courierID kernel.UUID, now time.Time) ([]*offer.Offer, error)

	// FindCouriersWithPendingOffers returns which of courierIDs hold a pending offer.
	FindCouriersWithPendingOffers(ctx context.Context, courierIDs []kernel.UUID) ([]kernel.UUID, error)

	// FindCouriersOfferedInRound returns couriers already offered the delivery in the given round.
	FindCouriersOfferedInRound(ctx context.Context, deliveryID kernel.UUID, round int) ([]kernel.UUID, error)

	// FindDue lists pending offers whose deadline is at or before now.
	FindDue(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error)
}
