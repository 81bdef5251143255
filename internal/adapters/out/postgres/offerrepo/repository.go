package offerrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const entityName = "offer"

// GormOfferRepository implements ports.OfferRepository using GORM.
type GormOfferRepository struct {
	db *gorm.DB
}

// NewGormOfferRepository creates a repository bound to db, which may be a transaction.
func NewGormOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// Add saves a new offer. A second pending offer for the same delivery or
// courier violates a partial unique index and fails with errs.ErrConcurrentModification.
func (r *GormOfferRepository) Add(ctx context.Context, aggregate *offer.Offer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate(err, entityName, aggregate.ID().String())
	}
	return nil
}

// Update overwrites every column of an existing offer.
func (r *GormOfferRepository) Update(ctx context.Context, aggregate *offer.Offer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OfferDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Translate(result.Error, entityName, aggregate.ID().String())
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError(entityName, aggregate.ID().String())
	}
	return nil
}

// Get retrieves an offer by ID.
func (r *GormOfferRepository) Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error) {
	return r.first(r.db.WithContext(ctx), id.String(), "id = ?", id.Bytes())
}

// GetForUpdate retrieves an offer and holds a row lock until the transaction ends.
func (r *GormOfferRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*offer.Offer, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id.String(), "id = ?", id.Bytes())
}

// GetPendingByDelivery returns the delivery's pending offer.
func (r *GormOfferRepository) GetPendingByDelivery(ctx context.Context, deliveryID kernel.UUID) (*offer.Offer, error) {
	return r.first(
		r.db.WithContext(ctx),
		"pending for delivery "+deliveryID.String(),
		"delivery_id = ? AND outcome = ?", deliveryID.Bytes(), int(offer.OutcomePending),
	)
}

// FindPendingByCourier lists the courier's pending offers still open at now.
func (r *GormOfferRepository) FindPendingByCourier(
	ctx context.Context,
	courierID kernel.UUID,
	now time.Time,
) ([]*offer.Offer, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	var dtos []OfferDTO
	err := r.db.WithContext(ctx).
		Where("courier_id = ? AND outcome = ? AND expires_at > ?", courierID.Bytes(), int(offer.OutcomePending), now).
		Order("expires_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	offers := make([]*offer.Offer, 0, len(dtos))
	for _, dto := range dtos {
		o, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		offers = append(offers, o)
	}
	return offers, nil
}

// FindCouriersWithPendingOffers returns the subset of courierIDs holding a pending offer.
func (r *GormOfferRepository) FindCouriersWithPendingOffers(
	ctx context.Context,
	courierIDs []kernel.UUID,
) ([]kernel.UUID, error) {
	if len(courierIDs) == 0 {
		return nil, nil
	}

	raw := make([]uuid.UUID, 0, len(courierIDs))
	for _, id := range courierIDs {
		raw = append(raw, id.Bytes())
	}

	rows, err := r.db.WithContext(ctx).Raw(
		`SELECT DISTINCT courier_id FROM offers WHERE outcome = ? AND courier_id IN ?`,
		int(offer.OutcomePending), raw,
	).Rows()
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

// FindCouriersOfferedInRound returns every courier already offered the delivery in round.
func (r *GormOfferRepository) FindCouriersOfferedInRound(
	ctx context.Context,
	deliveryID kernel.UUID,
	round int,
) ([]kernel.UUID, error) {
	rows, err := r.db.WithContext(ctx).Raw(
		`SELECT DISTINCT courier_id FROM offers WHERE delivery_id = ? AND dispatch_round = ?`,
		deliveryID.Bytes(), round,
	).Rows()
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

// FindDue lists pending offers whose deadline is at or before now, earliest first.
func (r *GormOfferRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("limit", fmt.Errorf("%d is not positive", limit))
	}

	rows, err := r.db.WithContext(ctx).Raw(
		`SELECT id FROM offers WHERE outcome = ? AND expires_at <= ? ORDER BY expires_at, id LIMIT ?`,
		int(offer.OutcomePending), now, limit,
	).Rows()
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

func (r *GormOfferRepository) first(db *gorm.DB, label string, query string, args ...any) (*offer.Offer, error) {
	var dto OfferDTO
	if err := db.Where(query, args...).First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(entityName, label)
		}
		return nil, pgerr.Translate(err, entityName, label)
	}

	return toDomain(dto)
}

func scanIDs(rows *sql.Rows) ([]kernel.UUID, error) {
	defer rows.Close()

	var ids []kernel.UUID
	for rows.Next() {
		var raw uuid.UUID
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
