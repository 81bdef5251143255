package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrExpireOfferCommandIsNotConstructed = errors.New(
	"ExpireOfferCommand must be created via NewExpireOfferCommand constructor",
)

// ExpireOfferCommand closes an offer whose deadline has passed.
type ExpireOfferCommand struct {
	offerID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewExpireOfferCommand(offerID kernel.UUID) (ExpireOfferCommand, error) {
	if err := offerID.Validate(); err != nil {
		return ExpireOfferCommand{}, err
	}
	return ExpireOfferCommand{offerID: offerID, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireOfferCommand) Validate() error {
	return c.guard.Validate(ErrExpireOfferCommandIsNotConstructed)
}

func (c ExpireOfferCommand) OfferID() kernel.UUID { return c.offerID }
