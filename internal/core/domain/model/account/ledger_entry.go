package account

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrLedgerEntryIsNotConstructed is returned when using an improperly initialized LedgerEntry.
var ErrLedgerEntryIsNotConstructed = errors.New("LedgerEntry must be created via Account.Credit, Account.Debit or RestoreLedgerEntry")

// LedgerEntry is an immutable, signed record of one balance change.
// Entries are only produced by Account.Credit and Account.Debit, so the
// account's balance always equals the sum of its entries.
type LedgerEntry struct {
	id               kernel.UUID
	accountID        kernel.UUID
	amount           decimal.Decimal
	reason           Reason
	deliveryID       *kernel.UUID
	resultingBalance decimal.Decimal
	createdAt        time.Time
	guard            guard.ConstructorGuard
}

// RestoreLedgerEntry rebuilds an entry loaded from storage.
func RestoreLedgerEntry(
	id kernel.UUID,
	accountID kernel.UUID,
	amount decimal.Decimal,
	reason Reason,
	deliveryID *kernel.UUID,
	resultingBalance decimal.Decimal,
	createdAt time.Time,
) (*LedgerEntry, error) {
	if err := errors.Join(id.Validate(), accountID.Validate(), reason.Validate()); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, errs.NewValueIsInvalidError("amount")
	}

	return &LedgerEntry{
		id:               id,
		accountID:        accountID,
		amount:           amount,
		reason:           reason,
		deliveryID:       deliveryID,
		resultingBalance: resultingBalance,
		createdAt:        createdAt,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

// Validate checks that the entry was properly constructed.
func (e *LedgerEntry) Validate() error {
	if e == nil {
		return ErrLedgerEntryIsNotConstructed
	}
	return e.guard.Validate(ErrLedgerEntryIsNotConstructed)
}

func (e *LedgerEntry) ID() kernel.UUID { return e.id }
func (e *LedgerEntry) AccountID() kernel.UUID { return e.accountID }
func (e *LedgerEntry) Amount() decimal.Decimal { return e.amount }
func (e *LedgerEntry) Reason() Reason { return e.reason }
func (e *LedgerEntry) ResultingBalance() decimal.Decimal { return e.resultingBalance }
func (e *LedgerEntry) CreatedAt() time.Time { return e.createdAt }

// DeliveryID returns the related delivery, or nil for manual adjustments.
func (e *LedgerEntry) DeliveryID() *kernel.UUID {
	if e.deliveryID == nil {
		return nil
	}
	id := *e.deliveryID
	return &id
}
