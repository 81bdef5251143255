package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetPendingOffersQueryIsNotConstructed = errors.New(
	"GetPendingOffersQuery must be created via NewGetPendingOffersQuery constructor",
)

// GetPendingOffersQuery lists the offers a courier can still answer. Couriers
// poll it when a push notification did not arrive.
type GetPendingOffersQuery struct {
	courierID kernel.UUID
	guard     guard.ConstructorGuard
}

func NewGetPendingOffersQuery(courierID kernel.UUID) (GetPendingOffersQuery, error) {
	if err := courierID.Validate(); err != nil {
		return GetPendingOffersQuery{}, err
	}
	return GetPendingOffersQuery{courierID: courierID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetPendingOffersQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingOffersQueryIsNotConstructed)
}

func (q GetPendingOffersQuery) CourierID() kernel.UUID { return q.courierID }

// GetPendingOffersQueryResponse carries what a courier needs to decide on an offer.
type GetPendingOffersQueryResponse struct {
	OfferID        kernel.UUID
	DeliveryID     kernel.UUID
	Pickup         kernel.Location
	Dropoff        kernel.Location
	DistanceKm     float64
	CourierEarning decimal.Decimal
	PaymentMethod  string
	ExpiresAt      time.Time
}
