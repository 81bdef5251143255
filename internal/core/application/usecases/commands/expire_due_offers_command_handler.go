package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ExpireDueOffersCommandHandler catches offers whose timer was lost, for
// example after a restart or when the offer was created by another instance.
type ExpireDueOffersCommandHandler struct {
	uowFactory UoWFactory
	expire     ExpireOfferCommandHandler
	clock      ports.Clock
}

func NewExpireDueOffersCommandHandler(uowFactory UoWFactory, expire ExpireOfferCommandHandler, clock ports.Clock) ExpireDueOffersCommandHandler {
	return ExpireDueOffersCommandHandler{uowFactory: uowFactory, expire: expire, clock: clock}
}

// Handle returns how many offers were expired. Failures on single offers are
// joined and returned after the whole batch was attempted.
func (h ExpireDueOffersCommandHandler) Handle(ctx context.Context, command ExpireDueOffersCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	due, err := h.uowFactory.Create().OfferRepository().FindDue(ctx, h.clock.Now(), command.Limit())
	if err != nil {
		return 0, err
	}

	var (
		expired int
		errList []error
	)
	for _, id := range due {
		cmd, err := NewExpireOfferCommand(id)
		if err != nil {
			errList = append(errList, err)
			continue
		}

		ok, err := h.expire.Handle(ctx, cmd)
		if err != nil {
			if !errors.Is(err, errs.ErrObjectNotFound) {
				errList = append(errList, err)
			}
			continue
		}
		if ok {
			expired++
		}
	}
	return expired, errors.Join(errList...)
}
