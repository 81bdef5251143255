package commands

import (
	"context"

	"dispatch/internal/core/application/ledger"
	"dispatch/internal/core/domain/model/delivery"
)

// ReleaseDeliveryCommandHandler returns an Assigned delivery to Pending when
// its courier drops it before pickup. The delivery keeps its dispatch round,
// so the releasing courier is not offered it again in this round.
type ReleaseDeliveryCommandHandler struct {
	uowFactory UoWFactory
	rt         Runtime
}

func NewReleaseDeliveryCommandHandler(uowFactory UoWFactory, rt Runtime) ReleaseDeliveryCommandHandler {
	return ReleaseDeliveryCommandHandler{uowFactory: uowFactory, rt: rt}
}

func (h ReleaseDeliveryCommandHandler) Handle(ctx context.Context, command ReleaseDeliveryCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	var d *delivery.Delivery
	if err := h.rt.Retry.OnConflict(ctx, func() error {
		var err error
		d, err = h.release(ctx, command)
		return err
	}); err != nil {
		return err
	}

	h.rt.Logger.InfoContext(ctx, "Delivery released by courier",
		"delivery_id", d.ID().String(),
		"courier_id", command.CourierID().String(),
		"reason", command.Reason(),
	)
	h.rt.Metrics.DeliveryTransition(d.Status().String())
	h.rt.Trigger.Enqueue(d.ID())
	return nil
}

func (h ReleaseDeliveryCommandHandler) release(ctx context.Context, command ReleaseDeliveryCommand) (*delivery.Delivery, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DeliveryRepository().GetForUpdate(ctx, command.DeliveryID())
	if err != nil {
		return nil, err
	}
	if err = checkAssignedCourier(d, command.CourierID()); err != nil {
		return nil, err
	}

	courierID, err := d.Release()
	if err != nil {
		return nil, err
	}

	accounts, err := ledger.Lock(ctx, uow.AccountRepository(), courierID)
	if err != nil {
		return nil, err
	}
	courier, err := accounts.Get(courierID)
	if err != nil {
		return nil, err
	}
	courier.ReleaseDelivery(d.ID())

	if err = uow.DeliveryRepository().Update(ctx, d); err != nil {
		return nil, err
	}
	if err = ledger.SaveAll(ctx, uow.AccountRepository(), accounts); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return d, nil
}
