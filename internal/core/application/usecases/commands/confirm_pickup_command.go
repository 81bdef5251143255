package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrConfirmPickupCommandIsNotConstructed = errors.New(
	"ConfirmPickupCommand must be created via NewConfirmPickupCommand constructor",
)

// ConfirmPickupCommand carries the code the sender shows the courier at pickup.
type ConfirmPickupCommand struct {
	deliveryID kernel.UUID
	code       string
	guard      guard.ConstructorGuard
}

// NewConfirmPickupCommand keeps the code as typed. A code of the wrong shape is
// not rejected here: it fails the comparison and surfaces as delivery.ErrOtpMismatch.
func NewConfirmPickupCommand(deliveryID kernel.UUID, code string) (ConfirmPickupCommand, error) {
	if err := deliveryID.Validate(); err != nil {
		return ConfirmPickupCommand{}, err
	}

	return ConfirmPickupCommand{
		deliveryID: deliveryID,
		code:       code,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmPickupCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPickupCommandIsNotConstructed)
}

func (c ConfirmPickupCommand) DeliveryID() kernel.UUID { return c.deliveryID }
func (c ConfirmPickupCommand) Code() string { return c.code }
