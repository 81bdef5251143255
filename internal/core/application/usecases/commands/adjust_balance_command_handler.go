package commands

import (
	"context"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"

	"github.com/shopspring/decimal"
)

// WalletLedger applies standalone wallet movements in their own transaction.
type WalletLedger interface {
	Credit(
		ctx context.Context,
		accountID kernel.UUID,
		amount decimal.Decimal,
		reason account.Reason,
		deliveryID *kernel.UUID,
	) (*account.LedgerEntry, error)
	Debit(
		ctx context.Context,
		accountID kernel.UUID,
		amount decimal.Decimal,
		reason account.Reason,
		deliveryID *kernel.UUID,
	) (*account.LedgerEntry, error)
}

// AdjustBalanceCommandHandler posts a manual_adjustment entry. Debits are
// not limited by the debt ceiling.
type AdjustBalanceCommandHandler struct {
	wallet WalletLedger
}

func NewAdjustBalanceCommandHandler(wallet WalletLedger) AdjustBalanceCommandHandler {
	return AdjustBalanceCommandHandler{wallet: wallet}
}

// Handle returns the appended ledger entry.
func (h AdjustBalanceCommandHandler) Handle(ctx context.Context, command AdjustBalanceCommand) (*account.LedgerEntry, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	if command.Direction() == services.Debit {
		return h.wallet.Debit(ctx, command.AccountID(), command.Amount(), account.ReasonManualAdjustment, nil)
	}
	return h.wallet.Credit(ctx, command.AccountID(), command.Amount(), account.ReasonManualAdjustment, nil)
}
