package commands

import (
	"context"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
)

// ExpireOfferCommandHandler is run by the per-offer timer and the sweep job.
// It is idempotent: offers that are already resolved or not yet due are left
// untouched and Handle reports false.
type ExpireOfferCommandHandler struct {
	uowFactory UoWFactory
	rt         Runtime
}

func NewExpireOfferCommandHandler(uowFactory UoWFactory, rt Runtime) ExpireOfferCommandHandler {
	return ExpireOfferCommandHandler{uowFactory: uowFactory, rt: rt}
}

// Handle reports whether the offer was expired by this call.
func (h ExpireOfferCommandHandler) Handle(ctx context.Context, command ExpireOfferCommand) (bool, error) {
	if err := command.Validate(); err != nil {
		return false, err
	}

	var (
		expired *offer.Offer
		d       *delivery.Delivery
	)
	if err := h.rt.Retry.OnConflict(ctx, func() error {
		var err error
		expired, d, err = h.expire(ctx, command)
		return err
	}); err != nil {
		return false, err
	}
	if expired == nil {
		return false, nil
	}

	h.rt.Metrics.OfferResolved(expired.Outcome().String())
	h.rt.notifier().send(ctx, expired.CourierID(), ports.EventOfferExpired, newOfferClosedPayload(expired))
	if d.IsAwaitingCourier() {
		h.rt.Trigger.Enqueue(d.ID())
	}
	return true, nil
}

func (h ExpireOfferCommandHandler) expire(ctx context.Context, command ExpireOfferCommand) (*offer.Offer, *delivery.Delivery, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	offers := uow.OfferRepository()
	peek, err := offers.Get(ctx, command.OfferID())
	if err != nil {
		return nil, nil, err
	}
	if !peek.IsPending() {
		return nil, nil, nil
	}

	d, err := uow.DeliveryRepository().GetForUpdate(ctx, peek.DeliveryID())
	if err != nil {
		return nil, nil, err
	}
	o, err := offers.GetForUpdate(ctx, command.OfferID())
	if err != nil {
		return nil, nil, err
	}

	if !o.ExpireIfDue(h.rt.Clock.Now()) {
		return nil, nil, nil
	}
	if err = persistMissedOffer(ctx, uow, o); err != nil {
		return nil, nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return o, d, nil
}

// persistMissedOffer saves an offer the courier did not take and counts it
// against the courier's acceptance rate. The offer row must already be locked.
func persistMissedOffer(ctx context.Context, uow UoW, o *offer.Offer) error {
	if err := uow.OfferRepository().Update(ctx, o); err != nil {
		return err
	}

	accounts := uow.AccountRepository()
	courier, err := accounts.GetForUpdate(ctx, o.CourierID())
	if err != nil {
		return err
	}
	courier.RecordOfferOutcome(false)
	return accounts.Update(ctx, courier)
}
