package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateCourierPresenceCommandIsNotConstructed = errors.New(
	"UpdateCourierPresenceCommand must be created via NewUpdateCourierPresenceCommand constructor",
)

// UpdateCourierPresenceCommand switches a courier online or offline and
// records the last known position.
type UpdateCourierPresenceCommand struct {
	courierID kernel.UUID
	online    bool
	location  *kernel.Location
	guard     guard.ConstructorGuard
}

// NewUpdateCourierPresenceCommand requires a location when going online.
func NewUpdateCourierPresenceCommand(
	courierID kernel.UUID,
	online bool,
	location *kernel.Location,
) (UpdateCourierPresenceCommand, error) {
	if err := courierID.Validate(); err != nil {
		return UpdateCourierPresenceCommand{}, err
	}
	if online && location == nil {
		return UpdateCourierPresenceCommand{}, errs.NewValueIsRequiredError("location")
	}
	if location != nil {
		if err := location.Validate(); err != nil {
			return UpdateCourierPresenceCommand{}, err
		}
	}

	return UpdateCourierPresenceCommand{
		courierID: courierID,
		online:    online,
		location:  location,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateCourierPresenceCommand) Validate() error {
	return c.guard.Validate(ErrUpdateCourierPresenceCommandIsNotConstructed)
}

func (c UpdateCourierPresenceCommand) CourierID() kernel.UUID { return c.courierID }
func (c UpdateCourierPresenceCommand) Online() bool { return c.online }
func (c UpdateCourierPresenceCommand) Location() *kernel.Location { return c.location }
