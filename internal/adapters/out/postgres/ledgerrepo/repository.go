package ledgerrepo

import (
	"context"
	"fmt"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const entityName = "ledger entry"

// GormLedgerRepository implements ports.LedgerRepository using GORM.
// Entries are only ever inserted.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a repository bound to db, which may be a transaction.
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append inserts a new entry.
func (r *GormLedgerRepository) Append(ctx context.Context, entry *account.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	dto := fromDomain(entry)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate(err, entityName, entry.ID().String())
	}
	return nil
}

// ListByAccount returns at most limit entries of the account, newest first.
func (r *GormLedgerRepository) ListByAccount(
	ctx context.Context,
	accountID kernel.UUID,
	limit int,
) ([]*account.LedgerEntry, error) {
	if err := accountID.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("limit", fmt.Errorf("%d is not positive", limit))
	}

	var dtos []LedgerEntryDTO
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID.Bytes()).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*account.LedgerEntry, 0, len(dtos))
	for _, dto := range dtos {
		e, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// SumByAccount returns the sum of all entry amounts of the account.
func (r *GormLedgerRepository) SumByAccount(ctx context.Context, accountID kernel.UUID) (decimal.Decimal, error) {
	if err := accountID.Validate(); err != nil {
		return decimal.Zero, err
	}

	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Raw(`SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE account_id = ?`, accountID.Bytes()).
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
