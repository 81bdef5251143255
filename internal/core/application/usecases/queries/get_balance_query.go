package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetBalanceQueryIsNotConstructed = errors.New(
	"GetBalanceQuery must be created via NewGetBalanceQuery constructor",
)

// GetBalanceQuery reads an account's wallet position.
type GetBalanceQuery struct {
	accountID kernel.UUID
	guard     guard.ConstructorGuard
}

func NewGetBalanceQuery(accountID kernel.UUID) (GetBalanceQuery, error) {
	if err := accountID.Validate(); err != nil {
		return GetBalanceQuery{}, err
	}
	return GetBalanceQuery{accountID: accountID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetBalanceQuery) Validate() error {
	return q.guard.Validate(ErrGetBalanceQueryIsNotConstructed)
}

func (q GetBalanceQuery) AccountID() kernel.UUID { return q.accountID }

// GetBalanceQueryResponse reports the balance and whether the kill switch is off.
type GetBalanceQueryResponse struct {
	AccountID               kernel.UUID
	Role                    string
	Balance                 decimal.Decimal
	DebtCeiling             decimal.Decimal
	IsEligibleForAssignment bool
}
