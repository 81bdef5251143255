package commands

import (
	"context"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
)

// CreateAccountCommandHandler persists a new wallet with a zero balance.
type CreateAccountCommandHandler struct {
	uowFactory AccountUoWFactory
}

func NewCreateAccountCommandHandler(uowFactory AccountUoWFactory) CreateAccountCommandHandler {
	return CreateAccountCommandHandler{uowFactory: uowFactory}
}

// Handle returns the id of the created account.
func (h CreateAccountCommandHandler) Handle(ctx context.Context, command CreateAccountCommand) (kernel.UUID, error) {
	if err := command.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	id := command.ID()
	if id.Validate() != nil {
		id = kernel.NewUUID()
	}

	acc, err := account.NewAccount(id, command.Role(), command.DebtCeiling())
	if err != nil {
		return kernel.UUID{}, err
	}
	if command.Verified() {
		acc.Verify()
	}
	if command.Role() == account.RoleCourier {
		if err = acc.Rate(command.Rating()); err != nil {
			return kernel.UUID{}, err
		}
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.AccountRepository().Add(ctx, acc); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}
	return acc.ID(), nil
}
