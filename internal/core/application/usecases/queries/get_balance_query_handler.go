package queries

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetBalanceQueryHandler struct {
	db *gorm.DB
}

func NewGetBalanceQueryHandler(db *gorm.DB) GetBalanceQueryHandler {
	return GetBalanceQueryHandler{db: db}
}

// Handle returns errs.ErrObjectNotFound for an unknown account.
func (h GetBalanceQueryHandler) Handle(ctx context.Context, query GetBalanceQuery) (GetBalanceQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetBalanceQueryResponse{}, err
	}

	var (
		role                 int
		balance, debtCeiling decimal.Decimal
	)
	err := h.db.WithContext(ctx).Raw(`
		SELECT role, balance, debt_ceiling
		FROM accounts
		WHERE id = ?
	`, query.AccountID().Bytes()).Row().Scan(&role, &balance, &debtCeiling)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetBalanceQueryResponse{}, errs.NewObjectNotFoundError("account", query.AccountID().String())
		}
		return GetBalanceQueryResponse{}, err
	}

	return GetBalanceQueryResponse{
		AccountID:               query.AccountID(),
		Role:                    account.Role(role).String(),
		Balance:                 balance,
		DebtCeiling:             debtCeiling,
		IsEligibleForAssignment: balance.GreaterThanOrEqual(debtCeiling.Neg()),
	}, nil
}
