package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// Push event types sent to couriers.
const (
	EventOfferCreated      = "offer.created"
	EventOfferExpired      = "offer.expired"
	EventOfferWithdrawn    = "offer.withdrawn"
	EventDeliveryCancelled = "delivery.cancelled"
)

// RealtimePush delivers best-effort notifications to a courier's device.
// Errors are logged by callers and never fail the operation that caused them;
// couriers fall back to polling pending offers.
type RealtimePush interface {
	Send(ctx context.Context, courierID kernel.UUID, eventType string, payload any) error
}
