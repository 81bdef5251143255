package commands

import (
	"context"
)

// ConfirmPickupCommandHandler moves an Assigned delivery to PickedUp once the
// pickup code matches. A wrong code leaves the delivery unchanged.
type ConfirmPickupCommandHandler struct {
	uowFactory UoWFactory
	rt         Runtime
}

func NewConfirmPickupCommandHandler(uowFactory UoWFactory, rt Runtime) ConfirmPickupCommandHandler {
	return ConfirmPickupCommandHandler{uowFactory: uowFactory, rt: rt}
}

func (h ConfirmPickupCommandHandler) Handle(ctx context.Context, command ConfirmPickupCommand) error {
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

	if err = d.ConfirmPickup(command.Code(), h.rt.Clock.Now()); err != nil {
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
