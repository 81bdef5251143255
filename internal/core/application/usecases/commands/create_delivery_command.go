package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCreateDeliveryCommandIsNotConstructed = errors.New(
	"CreateDeliveryCommand must be created via NewCreateDeliveryCommand constructor",
)

// CreateDeliveryCommand requests a pickup at one location and a drop-off at another.
type CreateDeliveryCommand struct {
	senderID      kernel.UUID
	pickup        kernel.Location
	dropoff       kernel.Location
	paymentMethod delivery.PaymentMethod
	guard         guard.ConstructorGuard
}

func NewCreateDeliveryCommand(
	senderID kernel.UUID,
	pickup kernel.Location,
	dropoff kernel.Location,
	paymentMethod delivery.PaymentMethod,
) (CreateDeliveryCommand, error) {
	if err := errors.Join(
		senderID.Validate(),
		pickup.Validate(),
		dropoff.Validate(),
		paymentMethod.Validate(),
	); err != nil {
		return CreateDeliveryCommand{}, err
	}

	return CreateDeliveryCommand{
		senderID:      senderID,
		pickup:        pickup,
		dropoff:       dropoff,
		paymentMethod: paymentMethod,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c CreateDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCreateDeliveryCommandIsNotConstructed)
}

func (c CreateDeliveryCommand) SenderID() kernel.UUID { return c.senderID }
func (c CreateDeliveryCommand) Pickup() kernel.Location { return c.pickup }
func (c CreateDeliveryCommand) Dropoff() kernel.Location { return c.dropoff }
func (c CreateDeliveryCommand) PaymentMethod() delivery.PaymentMethod { return c.paymentMethod }
