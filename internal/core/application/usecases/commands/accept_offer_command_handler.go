package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/application/ledger"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/offer"
)

type acceptResult struct {
	offer    *offer.Offer
	delivery *delivery.Delivery
	late     bool
}

// AcceptOfferCommandHandler turns a pending offer into an assignment.
//
// The deadline is checked against the clock read after the delivery and
// offer rows are locked, so an acceptance and an expiry of the same offer
// can never both succeed. A late acceptance still commits the Expired
// outcome, re-enqueues dispatch and returns offer.ErrOfferExpired.
//
// Example:
//
//	cmd, _ := NewAcceptOfferCommand(offerID, courierID)
//	err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, offer.ErrOfferExpired):
//	    // too late, the delivery goes to the next courier
//	case errors.Is(err, offer.ErrAlreadyAssigned):
//	    // someone else got it or the courier is busy
//	}
type AcceptOfferCommandHandler struct {
	uowFactory UoWFactory
	rt         Runtime
}

func NewAcceptOfferCommandHandler(uowFactory UoWFactory, rt Runtime) AcceptOfferCommandHandler {
	return AcceptOfferCommandHandler{uowFactory: uowFactory, rt: rt}
}

func (h AcceptOfferCommandHandler) Handle(ctx context.Context, command AcceptOfferCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	var result acceptResult
	if err := h.rt.Retry.OnConflict(ctx, func() error {
		var err error
		result, err = h.accept(ctx, command)
		return err
	}); err != nil {
		return err
	}

	h.rt.Scheduler.Cancel(result.offer.ID())
	h.rt.Metrics.OfferResolved(result.offer.Outcome().String())

	if result.late {
		h.rt.Trigger.Enqueue(result.delivery.ID())
		return offer.ErrOfferExpired
	}

	h.rt.Metrics.DeliveryTransition(result.delivery.Status().String())
	return nil
}

func (h AcceptOfferCommandHandler) accept(ctx context.Context, command AcceptOfferCommand) (acceptResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return acceptResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	offers := uow.OfferRepository()
	peek, err := offers.Get(ctx, command.OfferID())
	if err != nil {
		return acceptResult{}, err
	}

	d, err := uow.DeliveryRepository().GetForUpdate(ctx, peek.DeliveryID())
	if err != nil {
		return acceptResult{}, err
	}
	o, err := offers.GetForUpdate(ctx, command.OfferID())
	if err != nil {
		return acceptResult{}, err
	}

	now := h.rt.Clock.Now()
	wasPending := o.IsPending()
	if err = o.Accept(command.CourierID(), now); err != nil {
		if !wasPending || !errors.Is(err, offer.ErrOfferExpired) {
			return acceptResult{}, err
		}
		if err = persistMissedOffer(ctx, uow, o); err != nil {
			return acceptResult{}, err
		}
		if err = uow.Commit(ctx); err != nil {
			return acceptResult{}, err
		}
		return acceptResult{offer: o, delivery: d, late: true}, nil
	}

	if !d.IsAwaitingCourier() {
		return acceptResult{}, offer.ErrAlreadyAssigned
	}

	accounts, err := ledger.Lock(ctx, uow.AccountRepository(), command.CourierID())
	if err != nil {
		return acceptResult{}, err
	}
	courier, err := accounts.Get(command.CourierID())
	if err != nil {
		return acceptResult{}, err
	}
	if courier.CurrentDeliveryID() != nil {
		return acceptResult{}, offer.ErrAlreadyAssigned
	}

	if err = errors.Join(
		d.Assign(courier.ID(), now),
		courier.AssignDelivery(d.ID()),
	); err != nil {
		return acceptResult{}, err
	}
	courier.RecordOfferOutcome(true)

	if err = offers.Update(ctx, o); err != nil {
		return acceptResult{}, err
	}
	if err = uow.DeliveryRepository().Update(ctx, d); err != nil {
		return acceptResult{}, err
	}
	if err = ledger.SaveAll(ctx, uow.AccountRepository(), accounts); err != nil {
		return acceptResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return acceptResult{}, err
	}
	return acceptResult{offer: o, delivery: d}, nil
}
