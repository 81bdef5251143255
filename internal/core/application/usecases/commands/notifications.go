package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
)

// OfferCreatedPayload is pushed to the courier who received a new offer.
type OfferCreatedPayload struct {
	OfferID        string    `json:"offer_id"`
	DeliveryID     string    `json:"delivery_id"`
	PickupLat      float64   `json:"pickup_lat"`
	PickupLon      float64   `json:"pickup_lon"`
	DropoffLat     float64   `json:"dropoff_lat"`
	DropoffLon     float64   `json:"dropoff_lon"`
	DistanceKm     float64   `json:"distance_km"`
	CourierEarning string    `json:"courier_earning"`
	PaymentMethod  string    `json:"payment_method"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// OfferClosedPayload is pushed when an offer expires or is withdrawn.
type OfferClosedPayload struct {
	OfferID    string `json:"offer_id"`
	DeliveryID string `json:"delivery_id"`
	Outcome    string `json:"outcome"`
}

// DeliveryCancelledPayload is pushed to the courier of a cancelled delivery.
type DeliveryCancelledPayload struct {
	DeliveryID string `json:"delivery_id"`
	Reason     string `json:"reason"`
}

func newOfferCreatedPayload(o *offer.Offer, d *delivery.Delivery) OfferCreatedPayload {
	return OfferCreatedPayload{
		OfferID:        o.ID().String(),
		DeliveryID:     d.ID().String(),
		PickupLat:      d.Pickup().Lat(),
		PickupLon:      d.Pickup().Lon(),
		DropoffLat:     d.Dropoff().Lat(),
		DropoffLon:     d.Dropoff().Lon(),
		DistanceKm:     d.Pricing().DistanceKm(),
		CourierEarning: d.Pricing().CourierEarning().StringFixed(2),
		PaymentMethod:  d.PaymentMethod().String(),
		ExpiresAt:      o.ExpiresAt(),
	}
}

func newOfferClosedPayload(o *offer.Offer) OfferClosedPayload {
	return OfferClosedPayload{
		OfferID:    o.ID().String(),
		DeliveryID: o.DeliveryID().String(),
		Outcome:    o.Outcome().String(),
	}
}

// notifier sends post-commit pushes. Failures are logged and dropped; the
// courier app falls back to polling.
type notifier struct {
	push   ports.RealtimePush
	logger *slog.Logger
}

func newNotifier(push ports.RealtimePush, logger *slog.Logger) notifier {
	return notifier{push: push, logger: logger}
}

func (n notifier) send(ctx context.Context, courierID kernel.UUID, eventType string, payload any) {
	if err := n.push.Send(ctx, courierID, eventType, payload); err != nil {
		n.logger.WarnContext(ctx, "Push notification failed",
			"courier_id", courierID.String(),
			"event", eventType,
			"error", err,
		)
	}
}
