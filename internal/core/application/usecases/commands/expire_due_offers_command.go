package commands

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrExpireDueOffersCommandIsNotConstructed = errors.New(
	"ExpireDueOffersCommand must be created via NewExpireDueOffersCommand constructor",
)

// ExpireDueOffersCommand sweeps up to limit overdue offers.
type ExpireDueOffersCommand struct {
	limit int
	guard guard.ConstructorGuard
}

func NewExpireDueOffersCommand(limit int) (ExpireDueOffersCommand, error) {
	if limit <= 0 {
		return ExpireDueOffersCommand{}, errs.NewValueIsInvalidErrorWithCause("limit", fmt.Errorf("%d is not positive", limit))
	}
	return ExpireDueOffersCommand{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireDueOffersCommand) Validate() error {
	return c.guard.Validate(ErrExpireDueOffersCommandIsNotConstructed)
}

func (c ExpireDueOffersCommand) Limit() int { return c.limit }
