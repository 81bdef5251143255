package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetPendingOffersQueryHandler joins a courier's pending offers with their deliveries.
// Offers whose deadline has passed are hidden even before the expiry job resolves them.
type GetPendingOffersQueryHandler struct {
	db    *gorm.DB
	clock ports.Clock
}

func NewGetPendingOffersQueryHandler(db *gorm.DB, clock ports.Clock) GetPendingOffersQueryHandler {
	return GetPendingOffersQueryHandler{db: db, clock: clock}
}

// Handle returns the open offers ordered by deadline, soonest first.
func (h GetPendingOffersQueryHandler) Handle(
	ctx context.Context,
	query GetPendingOffersQuery,
) ([]GetPendingOffersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	offers := make([]GetPendingOffersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.delivery_id,
			d.pickup_lat,
			d.pickup_lon,
			d.dropoff_lat,
			d.dropoff_lon,
			d.distance_km,
			d.courier_earning,
			d.payment_method,
			o.expires_at
		FROM offers o
		JOIN deliveries d ON d.id = o.delivery_id
		WHERE o.courier_id = ? AND o.outcome = ? AND o.expires_at > ?
		ORDER BY o.expires_at, o.id
	`, query.CourierID().Bytes(), int(offer.OutcomePending), h.clock.Now()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			offerID, deliveryID                          uuid.UUID
			pickupLat, pickupLon, dropoffLat, dropoffLon float64
			distanceKm                                   float64
			earning                                      decimal.Decimal
			method                                       int
			expiresAt                                    time.Time
		)
		err = rows.Scan(
			&offerID, &deliveryID,
			&pickupLat, &pickupLon, &dropoffLat, &dropoffLon,
			&distanceKm, &earning, &method, &expiresAt,
		)
		if err != nil {
			return nil, err
		}

		resp := GetPendingOffersQueryResponse{
			DistanceKm:     distanceKm,
			CourierEarning: earning,
			PaymentMethod:  delivery.PaymentMethod(method).String(),
			ExpiresAt:      expiresAt,
		}
		if resp.OfferID, err = kernel.UUIDFromBytes(offerID[:]); err != nil {
			return nil, err
		}
		if resp.DeliveryID, err = kernel.UUIDFromBytes(deliveryID[:]); err != nil {
			return nil, err
		}
		if resp.Pickup, err = kernel.NewLocation(pickupLat, pickupLon); err != nil {
			return nil, err
		}
		if resp.Dropoff, err = kernel.NewLocation(dropoffLat, dropoffLon); err != nil {
			return nil, err
		}

		offers = append(offers, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return offers, nil
}
