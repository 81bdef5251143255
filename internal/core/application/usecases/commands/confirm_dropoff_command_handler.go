package commands

import (
	"context"

	"dispatch/internal/core/application/ledger"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"
)

// ConfirmDropoffCommandHandler completes a delivery and settles it.
//
// The Completed transition, the settlement postings and the release of the
// courier commit in one unit of work or not at all. Settlement is never
// blocked by the debt ceiling; a cash commission may push the courier below
// it, which only stops future assignments.
type ConfirmDropoffCommandHandler struct {
	uowFactory UoWFactory
	settlement services.SettlementEngine
	rt         Runtime
}

func NewConfirmDropoffCommandHandler(uowFactory UoWFactory, rt Runtime) ConfirmDropoffCommandHandler {
	return ConfirmDropoffCommandHandler{
		uowFactory: uowFactory,
		settlement: services.NewSettlementEngine(),
		rt:         rt,
	}
}

func (h ConfirmDropoffCommandHandler) Handle(ctx context.Context, command ConfirmDropoffCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	var (
		d        *delivery.Delivery
		postings []services.Posting
	)
	if err := h.rt.Retry.OnConflict(ctx, func() error {
		var err error
		d, postings, err = h.complete(ctx, command)
		return err
	}); err != nil {
		return err
	}

	h.rt.Metrics.DeliveryTransition(d.Status().String())
	for _, p := range postings {
		h.rt.Metrics.LedgerPosted(p.Reason, p.Amount)
	}
	return nil
}

func (h ConfirmDropoffCommandHandler) complete(
	ctx context.Context,
	command ConfirmDropoffCommand,
) (*delivery.Delivery, []services.Posting, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DeliveryRepository().GetForUpdate(ctx, command.DeliveryID())
	if err != nil {
		return nil, nil, err
	}

	now := h.rt.Clock.Now()
	if err = d.ConfirmDropoff(command.Code(), now); err != nil {
		return nil, nil, err
	}

	postings, err := h.settlement.OnCompleted(d)
	if err != nil {
		return nil, nil, err
	}

	courierID := d.CourierID()
	if courierID == nil {
		return nil, nil, errs.NewValueIsRequiredError("courier_id")
	}

	accounts, err := ledger.Lock(ctx, uow.AccountRepository(), append(ledger.PostingAccounts(postings), *courierID)...)
	if err != nil {
		return nil, nil, err
	}
	if _, err = ledger.Post(ctx, uow.LedgerRepository(), accounts, now, postings...); err != nil {
		return nil, nil, err
	}

	courier, err := accounts.Get(*courierID)
	if err != nil {
		return nil, nil, err
	}
	courier.ReleaseDelivery(d.ID())

	if err = uow.DeliveryRepository().Update(ctx, d); err != nil {
		return nil, nil, err
	}
	if err = ledger.SaveAll(ctx, uow.AccountRepository(), accounts); err != nil {
		return nil, nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return d, postings, nil
}
