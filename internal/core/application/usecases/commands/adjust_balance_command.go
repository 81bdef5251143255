package commands

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrAdjustBalanceCommandIsNotConstructed = errors.New(
	"AdjustBalanceCommand must be created via NewAdjustBalanceCommand constructor",
)

// AdjustBalanceCommand is an operator top-up or correction of a wallet.
type AdjustBalanceCommand struct {
	accountID kernel.UUID
	direction services.Direction
	amount    decimal.Decimal
	guard     guard.ConstructorGuard
}

func NewAdjustBalanceCommand(
	accountID kernel.UUID,
	direction services.Direction,
	amount decimal.Decimal,
) (AdjustBalanceCommand, error) {
	if err := accountID.Validate(); err != nil {
		return AdjustBalanceCommand{}, err
	}
	if direction != services.Credit && direction != services.Debit {
		return AdjustBalanceCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"direction",
			fmt.Errorf("%d is not a posting direction", direction),
		)
	}
	if !kernel.RoundMoney(amount).IsPositive() {
		return AdjustBalanceCommand{}, errs.NewValueIsInvalidErrorWithCause(
			"amount",
			fmt.Errorf("%s is not positive", amount),
		)
	}

	return AdjustBalanceCommand{
		accountID: accountID,
		direction: direction,
		amount:    amount,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AdjustBalanceCommand) Validate() error {
	return c.guard.Validate(ErrAdjustBalanceCommandIsNotConstructed)
}

func (c AdjustBalanceCommand) AccountID() kernel.UUID { return c.accountID }
func (c AdjustBalanceCommand) Direction() services.Direction { return c.direction }
func (c AdjustBalanceCommand) Amount() decimal.Decimal { return c.amount }
