package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRejectOfferCommandIsNotConstructed = errors.New(
	"RejectOfferCommand must be created via NewRejectOfferCommand constructor",
)

// RejectOfferCommand is a courier declining an offer.
type RejectOfferCommand struct {
	offerID   kernel.UUID
	courierID kernel.UUID
	guard     guard.ConstructorGuard
}

func NewRejectOfferCommand(offerID, courierID kernel.UUID) (RejectOfferCommand, error) {
	if err := errors.Join(offerID.Validate(), courierID.Validate()); err != nil {
		return RejectOfferCommand{}, err
	}

	return RejectOfferCommand{
		offerID:   offerID,
		courierID: courierID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RejectOfferCommand) Validate() error {
	return c.guard.Validate(ErrRejectOfferCommandIsNotConstructed)
}

func (c RejectOfferCommand) OfferID() kernel.UUID { return c.offerID }
func (c RejectOfferCommand) CourierID() kernel.UUID { return c.courierID }
