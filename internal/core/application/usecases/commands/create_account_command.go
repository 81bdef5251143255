package commands

import (
	"errors"
	"math"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrCreateAccountCommandIsNotConstructed = errors.New(
	"CreateAccountCommand must be created via NewCreateAccountCommand constructor",
)

// CreateAccountCommand opens a courier or business wallet.
type CreateAccountCommand struct {
	id          kernel.UUID
	role        account.Role
	debtCeiling decimal.Decimal
	verified    bool
	rating      float64
	guard       guard.ConstructorGuard
}

// NewCreateAccountCommand validates the input. A zero id lets the handler generate one.
func NewCreateAccountCommand(
	id kernel.UUID,
	role account.Role,
	debtCeiling decimal.Decimal,
	verified bool,
	rating float64,
) (CreateAccountCommand, error) {
	if err := role.Validate(); err != nil {
		return CreateAccountCommand{}, err
	}
	if debtCeiling.IsNegative() {
		return CreateAccountCommand{}, errs.NewValueIsInvalidError("debt_ceiling")
	}
	if math.IsNaN(rating) || rating < account.RatingMin || rating > account.RatingMax {
		return CreateAccountCommand{}, errs.NewValueIsOutOfRangeError("rating", rating, account.RatingMin, account.RatingMax)
	}

	return CreateAccountCommand{
		id:          id,
		role:        role,
		debtCeiling: debtCeiling,
		verified:    verified,
		rating:      rating,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c CreateAccountCommand) Validate() error {
	return c.guard.Validate(ErrCreateAccountCommandIsNotConstructed)
}

func (c CreateAccountCommand) ID() kernel.UUID { return c.id }
func (c CreateAccountCommand) Role() account.Role { return c.role }
func (c CreateAccountCommand) DebtCeiling() decimal.Decimal { return c.debtCeiling }
func (c CreateAccountCommand) Verified() bool { return c.verified }
func (c CreateAccountCommand) Rating() float64 { return c.rating }
