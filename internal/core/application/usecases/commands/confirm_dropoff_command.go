package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrConfirmDropoffCommandIsNotConstructed = errors.New(
	"ConfirmDropoffCommand must be created via NewConfirmDropoffCommand constructor",
)

// ConfirmDropoffCommand carries the code the recipient shows the courier at drop-off.
type ConfirmDropoffCommand struct {
	deliveryID kernel.UUID
	code       string
	guard      guard.ConstructorGuard
}

// NewConfirmDropoffCommand keeps the code as typed. A code of the wrong shape is
// not rejected here: it fails the comparison and surfaces as delivery.ErrOtpMismatch.
func NewConfirmDropoffCommand(deliveryID kernel.UUID, code string) (ConfirmDropoffCommand, error) {
	if err := deliveryID.Validate(); err != nil {
		return ConfirmDropoffCommand{}, err
	}

	return ConfirmDropoffCommand{
		deliveryID: deliveryID,
		code:       code,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmDropoffCommand) Validate() error {
	return c.guard.Validate(ErrConfirmDropoffCommandIsNotConstructed)
}

func (c ConfirmDropoffCommand) DeliveryID() kernel.UUID { return c.deliveryID }
func (c ConfirmDropoffCommand) Code() string { return c.code }
