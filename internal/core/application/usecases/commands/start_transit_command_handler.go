package commands

import (
	"context"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
)

// StartTransitCommandHandler moves a PickedUp delivery to InTransit.
type StartTransitCommandHandler struct {
	uowFactory UoWFactory
	rt         Runtime
}

func NewStartTransitCommandHandler(uowFactory UoWFactory, rt Runtime) StartTransitCommandHandler {
	return StartTransitCommandHandler{uowFactory: uowFactory, rt: rt}
}

func (h StartTransitCommandHandler) Handle(ctx context.Context, command StartTransitCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.DeliveryRepository()
	d, err := repo.GetForUpdate(ctx, command.DeliveryID())
	if err != nil {
		return err
	}

	if err = checkAssignedCourier(d, command.CourierID()); err != nil {
		return err
	}
	if err = d.StartTransit(h.rt.Clock.Now()); err != nil {
		return err
	}

	if err = repo.Update(ctx, d); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.rt.Metrics.DeliveryTransition(d.Status().String())
	return nil
}

// checkAssignedCourier fails when a courier other than the assigned one acts
// on d. Deliveries without a courier are left to the state machine to refuse.
func checkAssignedCourier(d *delivery.Delivery, courierID kernel.UUID) error {
	assigned := d.CourierID()
	if assigned != nil && !assigned.IsEqual(courierID) {
		return ErrNotAssignedCourier
	}
	return nil
}
