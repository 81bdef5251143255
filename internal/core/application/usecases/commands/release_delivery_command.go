package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrReleaseDeliveryCommandIsNotConstructed = errors.New(
	"ReleaseDeliveryCommand must be created via NewReleaseDeliveryCommand constructor",
)

// ReleaseDeliveryCommand is a courier giving up an assignment before pickup.
type ReleaseDeliveryCommand struct {
	deliveryID kernel.UUID
	courierID  kernel.UUID
	reason     string
	guard      guard.ConstructorGuard
}

func NewReleaseDeliveryCommand(deliveryID, courierID kernel.UUID, reason string) (ReleaseDeliveryCommand, error) {
	if err := errors.Join(deliveryID.Validate(), courierID.Validate()); err != nil {
		return ReleaseDeliveryCommand{}, err
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > delivery.MaxCancelReasonLength {
		return ReleaseDeliveryCommand{}, errs.NewValueIsOutOfRangeError("reason", len(reason), 0, delivery.MaxCancelReasonLength)
	}

	return ReleaseDeliveryCommand{
		deliveryID: deliveryID,
		courierID:  courierID,
		reason:     reason,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c ReleaseDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrReleaseDeliveryCommandIsNotConstructed)
}

func (c ReleaseDeliveryCommand) DeliveryID() kernel.UUID { return c.deliveryID }
func (c ReleaseDeliveryCommand) CourierID() kernel.UUID { return c.courierID }
func (c ReleaseDeliveryCommand) Reason() string { return c.reason }
