package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/application/ledger"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

type cancelResult struct {
	delivery  *delivery.Delivery
	withdrawn *offer.Offer
	postings  []services.Posting
}

// CancelDeliveryCommandHandler cancels a delivery that is not yet final.
//
// In one unit of work it withdraws a pending offer, refunds a prepaid
// escrow and frees the assigned courier. The affected couriers are notified
// after commit.
type CancelDeliveryCommandHandler struct {
	uowFactory UoWFactory
	settlement services.SettlementEngine
	rt         Runtime
}

func NewCancelDeliveryCommandHandler(uowFactory UoWFactory, rt Runtime) CancelDeliveryCommandHandler {
	return CancelDeliveryCommandHandler{
		uowFactory: uowFactory,
		settlement: services.NewSettlementEngine(),
		rt:         rt,
	}
}

func (h CancelDeliveryCommandHandler) Handle(ctx context.Context, command CancelDeliveryCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	var result cancelResult
	if err := h.rt.Retry.OnConflict(ctx, func() error {
		var err error
		result, err = h.cancel(ctx, command)
		return err
	}); err != nil {
		return err
	}

	n := h.rt.notifier()
	d := result.delivery

	h.rt.Metrics.DeliveryTransition(d.Status().String())
	for _, p := range result.postings {
		h.rt.Metrics.LedgerPosted(p.Reason, p.Amount)
	}

	if o := result.withdrawn; o != nil {
		h.rt.Scheduler.Cancel(o.ID())
		h.rt.Metrics.OfferResolved(o.Outcome().String())
		n.send(ctx, o.CourierID(), ports.EventOfferWithdrawn, newOfferClosedPayload(o))
	}
	if courierID := d.CourierID(); courierID != nil {
		n.send(ctx, *courierID, ports.EventDeliveryCancelled, DeliveryCancelledPayload{
			DeliveryID: d.ID().String(),
			Reason:     d.CancelReason(),
		})
	}
	return nil
}

func (h CancelDeliveryCommandHandler) cancel(ctx context.Context, command CancelDeliveryCommand) (cancelResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return cancelResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DeliveryRepository().GetForUpdate(ctx, command.DeliveryID())
	if err != nil {
		return cancelResult{}, err
	}

	now := h.rt.Clock.Now()
	if err = d.Cancel(command.Reason(), now); err != nil {
		return cancelResult{}, err
	}

	withdrawn, err := h.withdrawPendingOffer(ctx, uow.OfferRepository(), d.ID(), now)
	if err != nil {
		return cancelResult{}, err
	}

	postings, err := h.settlement.OnCancelled(d)
	if err != nil {
		return cancelResult{}, err
	}

	ids := ledger.PostingAccounts(postings)
	courierID := d.CourierID()
	if courierID != nil {
		ids = append(ids, *courierID)
	}

	accounts, err := ledger.Lock(ctx, uow.AccountRepository(), ids...)
	if err != nil {
		return cancelResult{}, err
	}
	if _, err = ledger.Post(ctx, uow.LedgerRepository(), accounts, now, postings...); err != nil {
		return cancelResult{}, err
	}
	if courierID != nil {
		courier, err := accounts.Get(*courierID)
		if err != nil {
			return cancelResult{}, err
		}
		courier.ReleaseDelivery(d.ID())
	}

	if err = uow.DeliveryRepository().Update(ctx, d); err != nil {
		return cancelResult{}, err
	}
	if err = ledger.SaveAll(ctx, uow.AccountRepository(), accounts); err != nil {
		return cancelResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return cancelResult{}, err
	}
	return cancelResult{delivery: d, withdrawn: withdrawn, postings: postings}, nil
}

func (h CancelDeliveryCommandHandler) withdrawPendingOffer(
	ctx context.Context,
	offers ports.OfferRepository,
	deliveryID kernel.UUID,
	now time.Time,
) (*offer.Offer, error) {
	pending, err := offers.GetPendingByDelivery(ctx, deliveryID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	o, err := offers.GetForUpdate(ctx, pending.ID())
	if err != nil {
		return nil, err
	}
	if !o.Withdraw(now) {
		return nil, nil
	}
	if err = offers.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
