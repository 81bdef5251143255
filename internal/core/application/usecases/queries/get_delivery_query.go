package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetDeliveryQueryIsNotConstructed = errors.New(
	"GetDeliveryQuery must be created via NewGetDeliveryQuery constructor",
)

// GetDeliveryQuery reads the full state of one delivery.
//
// Example:
//
//	query, err := NewGetDeliveryQuery(deliveryID)
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
type GetDeliveryQuery struct {
	deliveryID kernel.UUID
	guard      guard.ConstructorGuard
}

// NewGetDeliveryQuery validates the delivery id.
func NewGetDeliveryQuery(deliveryID kernel.UUID) (GetDeliveryQuery, error) {
	if err := deliveryID.Validate(); err != nil {
		return GetDeliveryQuery{}, err
	}
	return GetDeliveryQuery{deliveryID: deliveryID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryQueryIsNotConstructed)
}

func (q GetDeliveryQuery) DeliveryID() kernel.UUID { return q.deliveryID }

// GetDeliveryQueryResponse is the sender-facing view of a delivery. It carries
// both one-time codes, which the sender hands to the courier at each end.
type GetDeliveryQueryResponse struct {
	ID             kernel.UUID
	Status         string
	SenderID       kernel.UUID
	CourierID      *kernel.UUID
	Pickup         kernel.Location
	Dropoff        kernel.Location
	PaymentMethod  string
	DistanceKm     float64
	TotalPrice     decimal.Decimal
	PlatformFee    decimal.Decimal
	CourierEarning decimal.Decimal
	PickupOTP      string
	DropoffOTP     string
	DispatchRound  int
	CancelReason   string
	CreatedAt      time.Time
	AssignedAt     *time.Time
	PickedUpAt     *time.Time
	InTransitAt    *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
}
