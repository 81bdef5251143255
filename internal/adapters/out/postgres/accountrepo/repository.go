package accountrepo

import (
	"context"
	"errors"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const entityName = "account"

// GormAccountRepository implements ports.AccountRepository using GORM.
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a repository bound to db, which may be a transaction.
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Add saves a new account.
func (r *GormAccountRepository) Add(ctx context.Context, aggregate *account.Account) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate(err, entityName, aggregate.ID().String())
	}
	return nil
}

// Update writes the aggregate if its version still matches the stored row,
// then advances the aggregate's version.
func (r *GormAccountRepository) Update(ctx context.Context, aggregate *account.Account) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).
		Model(&AccountDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Translate(result.Error, entityName, aggregate.ID().String())
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&AccountDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError(entityName, aggregate.ID().String())
		}
		return errs.NewConcurrentModificationError(entityName, aggregate.ID().String())
	}

	aggregate.CommitVersion()
	return nil
}

// Get retrieves an account by ID.
func (r *GormAccountRepository) Get(ctx context.Context, id kernel.UUID) (*account.Account, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves an account and holds a row lock until the transaction ends.
func (r *GormAccountRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*account.Account, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// FindDispatchable returns online, verified, free couriers inside the bounding
// box of radiusKm around center whose balance is above their debt ceiling.
func (r *GormAccountRepository) FindDispatchable(
	ctx context.Context,
	center kernel.Location,
	radiusKm float64,
) ([]*account.Account, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}

	minLat, maxLat, minLon, maxLon := center.BoundingBox(radiusKm)

	var dtos []AccountDTO
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_online AND is_verified AND current_delivery_id IS NULL", int(account.RoleCourier)).
		Where("location_lat BETWEEN ? AND ? AND location_lon BETWEEN ? AND ?", minLat, maxLat, minLon, maxLon).
		Where("balance >= -debt_ceiling").
		Order("id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

func (r *GormAccountRepository) get(db *gorm.DB, id kernel.UUID) (*account.Account, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto AccountDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(entityName, id.String())
		}
		return nil, pgerr.Translate(err, entityName, id.String())
	}

	return toDomain(dto)
}
