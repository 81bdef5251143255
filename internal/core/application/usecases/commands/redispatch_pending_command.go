package commands

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrRedispatchPendingCommandIsNotConstructed = errors.New(
	"RedispatchPendingCommand must be created via NewRedispatchPendingCommand constructor",
)

// RedispatchPendingCommand re-queues Pending deliveries that have waited at
// least minAge without an open offer.
type RedispatchPendingCommand struct {
	minAge time.Duration
	limit  int
	guard  guard.ConstructorGuard
}

func NewRedispatchPendingCommand(minAge time.Duration, limit int) (RedispatchPendingCommand, error) {
	if minAge < 0 {
		return RedispatchPendingCommand{}, errs.NewValueIsInvalidErrorWithCause("min_age", fmt.Errorf("%s is negative", minAge))
	}
	if limit <= 0 {
		return RedispatchPendingCommand{}, errs.NewValueIsInvalidErrorWithCause("limit", fmt.Errorf("%d is not positive", limit))
	}
	return RedispatchPendingCommand{minAge: minAge, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c RedispatchPendingCommand) Validate() error {
	return c.guard.Validate(ErrRedispatchPendingCommandIsNotConstructed)
}

func (c RedispatchPendingCommand) MinAge() time.Duration { return c.minAge }

func (c RedispatchPendingCommand) Limit() int { return c.limit }
