package ledger

import (
	"context"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/retry"

	"github.com/shopspring/decimal"
)

// UoWFactory creates units of work that expose the wallet repositories.
type UoWFactory interface {
	Create() UoW
}

// UoW is the transaction boundary used by WalletLedger.
type UoW interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	AccountRepository() ports.AccountRepository
	LedgerRepository() ports.LedgerRepository
}

// WalletLedger runs standalone wallet operations such as manual top-ups.
// Each call locks the account, applies the change, appends the entry and
// commits; a lost race is retried with bounded backoff.
type WalletLedger struct {
	uowFactory UoWFactory
	clock      ports.Clock
	metrics    ports.Metrics
	retry      retry.Policy
}

func NewWalletLedger(uowFactory UoWFactory, clock ports.Clock, metrics ports.Metrics, policy retry.Policy) *WalletLedger {
	return &WalletLedger{
		uowFactory: uowFactory,
		clock:      clock,
		metrics:    metrics,
		retry:      policy,
	}
}

// Credit adds amount to the account and returns the entry.
func (l *WalletLedger) Credit(
	ctx context.Context,
	accountID kernel.UUID,
	amount decimal.Decimal,
	reason account.Reason,
	deliveryID *kernel.UUID,
) (*account.LedgerEntry, error) {
	return l.apply(ctx, accountID, func(a *account.Account, at time.Time) (*account.LedgerEntry, error) {
		return a.Credit(amount, reason, deliveryID, at)
	})
}

// Debit subtracts amount from the account and returns the entry. The debt
// ceiling does not block debits.
func (l *WalletLedger) Debit(
	ctx context.Context,
	accountID kernel.UUID,
	amount decimal.Decimal,
	reason account.Reason,
	deliveryID *kernel.UUID,
) (*account.LedgerEntry, error) {
	return l.apply(ctx, accountID, func(a *account.Account, at time.Time) (*account.LedgerEntry, error) {
		return a.Debit(amount, reason, deliveryID, at)
	})
}

// IsEligibleForAssignment reports balance >= -debt_ceiling for the account.
func (l *WalletLedger) IsEligibleForAssignment(ctx context.Context, accountID kernel.UUID) (bool, error) {
	acc, err := l.read(ctx, accountID)
	if err != nil {
		return false, err
	}
	return acc.IsEligibleForAssignment(), nil
}

// GetBalance returns the current balance of the account.
func (l *WalletLedger) GetBalance(ctx context.Context, accountID kernel.UUID) (decimal.Decimal, error) {
	acc, err := l.read(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance(), nil
}

// Statement is an account's balance next to the sum of its ledger entries.
// Drift is Balance - LedgerSum and is zero for a consistent account.
type Statement struct {
	AccountID kernel.UUID
	Balance   decimal.Decimal
	LedgerSum decimal.Decimal
	Drift     decimal.Decimal
	Entries   []*account.LedgerEntry
}

// Statement returns the newest limit entries of the account with its reconciliation figures.
func (l *WalletLedger) Statement(ctx context.Context, accountID kernel.UUID, limit int) (Statement, error) {
	if err := accountID.Validate(); err != nil {
		return Statement{}, err
	}
	if limit <= 0 {
		return Statement{}, errs.NewValueIsInvalidErrorWithCause("limit", fmt.Errorf("%d is not positive", limit))
	}

	uow := l.uowFactory.Create()
	acc, err := uow.AccountRepository().Get(ctx, accountID)
	if err != nil {
		return Statement{}, err
	}

	entries := uow.LedgerRepository()
	sum, err := entries.SumByAccount(ctx, accountID)
	if err != nil {
		return Statement{}, err
	}
	list, err := entries.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return Statement{}, err
	}

	return Statement{
		AccountID: accountID,
		Balance:   acc.Balance(),
		LedgerSum: sum,
		Drift:     acc.Balance().Sub(sum),
		Entries:   list,
	}, nil
}

func (l *WalletLedger) read(ctx context.Context, accountID kernel.UUID) (*account.Account, error) {
	if err := accountID.Validate(); err != nil {
		return nil, err
	}
	return l.uowFactory.Create().AccountRepository().Get(ctx, accountID)
}

func (l *WalletLedger) apply(
	ctx context.Context,
	accountID kernel.UUID,
	change func(*account.Account, time.Time) (*account.LedgerEntry, error),
) (*account.LedgerEntry, error) {
	if err := accountID.Validate(); err != nil {
		return nil, err
	}

	var entry *account.LedgerEntry
	err := l.retry.OnConflict(ctx, func() error {
		var err error
		entry, err = l.applyOnce(ctx, accountID, change)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.metrics.LedgerPosted(entry.Reason(), entry.Amount())
	return entry, nil
}

func (l *WalletLedger) applyOnce(
	ctx context.Context,
	accountID kernel.UUID,
	change func(*account.Account, time.Time) (*account.LedgerEntry, error),
) (*account.LedgerEntry, error) {
	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	accounts := uow.AccountRepository()
	acc, err := accounts.GetForUpdate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entry, err := change(acc, l.clock.Now())
	if err != nil {
		return nil, err
	}

	if err = uow.LedgerRepository().Append(ctx, entry); err != nil {
		return nil, err
	}
	if err = accounts.Update(ctx, acc); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}
