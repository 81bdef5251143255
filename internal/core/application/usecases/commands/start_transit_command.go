package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrStartTransitCommandIsNotConstructed = errors.New(
	"StartTransitCommand must be created via NewStartTransitCommand constructor",
)

// StartTransitCommand is the assigned courier leaving the pickup point.
type StartTransitCommand struct {
	deliveryID kernel.UUID
	courierID  kernel.UUID
	guard      guard.ConstructorGuard
}

func NewStartTransitCommand(deliveryID, courierID kernel.UUID) (StartTransitCommand, error) {
	if err := errors.Join(deliveryID.Validate(), courierID.Validate()); err != nil {
		return StartTransitCommand{}, err
	}

	return StartTransitCommand{
		deliveryID: deliveryID,
		courierID:  courierID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c StartTransitCommand) Validate() error {
	return c.guard.Validate(ErrStartTransitCommandIsNotConstructed)
}

func (c StartTransitCommand) DeliveryID() kernel.UUID { return c.deliveryID }
func (c StartTransitCommand) CourierID() kernel.UUID { return c.courierID }
