package commands

import (
	"context"

	"dispatch/internal/core/domain/model/offer"
)

// RejectOfferCommandHandler records a declined offer and hands the delivery
// back to the dispatch worker.
type RejectOfferCommandHandler struct {
	uowFactory UoWFactory
	rt         Runtime
}

func NewRejectOfferCommandHandler(uowFactory UoWFactory, rt Runtime) RejectOfferCommandHandler {
	return RejectOfferCommandHandler{uowFactory: uowFactory, rt: rt}
}

func (h RejectOfferCommandHandler) Handle(ctx context.Context, command RejectOfferCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	var rejected *offer.Offer
	if err := h.rt.Retry.OnConflict(ctx, func() error {
		var err error
		rejected, err = h.reject(ctx, command)
		return err
	}); err != nil {
		return err
	}

	h.rt.Scheduler.Cancel(rejected.ID())
	h.rt.Metrics.OfferResolved(rejected.Outcome().String())
	h.rt.Trigger.Enqueue(rejected.DeliveryID())
	return nil
}

func (h RejectOfferCommandHandler) reject(ctx context.Context, command RejectOfferCommand) (*offer.Offer, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	offers := uow.OfferRepository()
	peek, err := offers.Get(ctx, command.OfferID())
	if err != nil {
		return nil, err
	}

	if _, err = uow.DeliveryRepository().GetForUpdate(ctx, peek.DeliveryID()); err != nil {
		return nil, err
	}
	o, err := offers.GetForUpdate(ctx, command.OfferID())
	if err != nil {
		return nil, err
	}

	if err = o.Reject(command.CourierID(), h.rt.Clock.Now()); err != nil {
		return nil, err
	}
	if err = persistMissedOffer(ctx, uow, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

