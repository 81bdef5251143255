// Package ledgerrepo is the append-only store of ledger entries.
package ledgerrepo

import (
	"time"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryDTO is the row layout of the ledger_entries table.
type LedgerEntryDTO struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AccountID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_account_created,priority:1"`
	Amount           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Reason           string          `gorm:"type:varchar(32);not null"`
	DeliveryID       *uuid.UUID      `gorm:"type:uuid;index"`
	ResultingBalance decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt        time.Time       `gorm:"not null;index:idx_ledger_account_created,priority:2"`
}

// TableName overrides GORM's default naming convention.
func (LedgerEntryDTO) TableName() string {
	return "ledger_entries"
}

func fromDomain(e *account.LedgerEntry) LedgerEntryDTO {
	var deliveryID *uuid.UUID
	if id := e.DeliveryID(); id != nil {
		raw := id.Bytes()
		deliveryID = &raw
	}

	return LedgerEntryDTO{
		ID:               e.ID().Bytes(),
		AccountID:        e.AccountID().Bytes(),
		Amount:           e.Amount(),
		Reason:           e.Reason().String(),
		DeliveryID:       deliveryID,
		ResultingBalance: e.ResultingBalance(),
		CreatedAt:        e.CreatedAt(),
	}
}

func toDomain(dto LedgerEntryDTO) (*account.LedgerEntry, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	accountID, err := kernel.UUIDFromBytes(dto.AccountID[:])
	if err != nil {
		return nil, err
	}

	var deliveryID *kernel.UUID
	if dto.DeliveryID != nil {
		dID, dErr := kernel.UUIDFromBytes(dto.DeliveryID[:])
		if dErr != nil {
			return nil, dErr
		}
		deliveryID = &dID
	}

	return account.RestoreLedgerEntry(
		id,
		accountID,
		dto.Amount,
		account.Reason(dto.Reason),
		deliveryID,
		dto.ResultingBalance,
		dto.CreatedAt,
	)
}
