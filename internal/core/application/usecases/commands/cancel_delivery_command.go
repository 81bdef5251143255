package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCancelDeliveryCommandIsNotConstructed = errors.New(
	"CancelDeliveryCommand must be created via NewCancelDeliveryCommand constructor",
)

// CancelDeliveryCommand stops a delivery on behalf of the sender or an operator.
type CancelDeliveryCommand struct {
	deliveryID kernel.UUID
	reason     string
	guard      guard.ConstructorGuard
}

func NewCancelDeliveryCommand(deliveryID kernel.UUID, reason string) (CancelDeliveryCommand, error) {
	if err := deliveryID.Validate(); err != nil {
		return CancelDeliveryCommand{}, err
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > delivery.MaxCancelReasonLength {
		return CancelDeliveryCommand{}, errs.NewValueIsOutOfRangeError("reason", len(reason), 0, delivery.MaxCancelReasonLength)
	}

	return CancelDeliveryCommand{
		deliveryID: deliveryID,
		reason:     reason,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c CancelDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCancelDeliveryCommandIsNotConstructed)
}

func (c CancelDeliveryCommand) DeliveryID() kernel.UUID { return c.deliveryID }
func (c CancelDeliveryCommand) Reason() string { return c.reason }
