package commands

import (
	"context"
)

// UpdateCourierPresenceCommandHandler applies presence changes under the
// account row lock so they serialize with ledger mutations.
type UpdateCourierPresenceCommandHandler struct {
	uowFactory AccountUoWFactory
}

func NewUpdateCourierPresenceCommandHandler(uowFactory AccountUoWFactory) UpdateCourierPresenceCommandHandler {
	return UpdateCourierPresenceCommandHandler{uowFactory: uowFactory}
}

func (h UpdateCourierPresenceCommandHandler) Handle(ctx context.Context, command UpdateCourierPresenceCommand) error {
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

	repo := uow.AccountRepository()
	courier, err := repo.GetForUpdate(ctx, command.CourierID())
	if err != nil {
		return err
	}

	switch {
	case command.Online():
		err = courier.GoOnline(*command.Location())
	case command.Location() != nil:
		courier.GoOffline()
		err = courier.UpdateLocation(*command.Location())
	default:
		courier.GoOffline()
	}
	if err != nil {
		return err
	}

	if err = repo.Update(ctx, courier); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
