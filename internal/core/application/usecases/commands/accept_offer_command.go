package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAcceptOfferCommandIsNotConstructed = errors.New(
	"AcceptOfferCommand must be created via NewAcceptOfferCommand constructor",
)

// AcceptOfferCommand is a courier taking an offer.
type AcceptOfferCommand struct {
	offerID   kernel.UUID
	courierID kernel.UUID
	guard     guard.ConstructorGuard
}

func NewAcceptOfferCommand(offerID, courierID kernel.UUID) (AcceptOfferCommand, error) {
	if err := errors.Join(offerID.Validate(), courierID.Validate()); err != nil {
		return AcceptOfferCommand{}, err
	}

	return AcceptOfferCommand{
		offerID:   offerID,
		courierID: courierID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AcceptOfferCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOfferCommandIsNotConstructed)
}

func (c AcceptOfferCommand) OfferID() kernel.UUID { return c.offerID }
func (c AcceptOfferCommand) CourierID() kernel.UUID { return c.courierID }
