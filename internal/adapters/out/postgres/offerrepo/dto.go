// Package offerrepo persists courier offers. Partial unique indexes keep at
// most one pending offer per delivery and per courier.
package offerrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"

	"github.com/google/uuid"
)

// OfferDTO is the row layout of the offers table. The partial index predicates
// use the stored value of offer.OutcomePending.
type OfferDTO struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	DeliveryID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_offers_delivery_round,priority:1;uniqueIndex:ux_offers_pending_delivery,where:outcome = 1"`
	CourierID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_offers_pending_courier,where:outcome = 1"`
	RadiusTier    int        `gorm:"not null"`
	RadiusKm      float64    `gorm:"not null"`
	DispatchRound int        `gorm:"not null;index:idx_offers_delivery_round,priority:2"`
	CreatedAt     time.Time  `gorm:"not null"`
	ExpiresAt     time.Time  `gorm:"not null;index:idx_offers_pending_expiry,where:outcome = 1"`
	ResolvedAt    *time.Time
	Outcome       int `gorm:"type:smallint;not null"`
}

// TableName overrides GORM's default naming convention.
func (OfferDTO) TableName() string {
	return "offers"
}

func fromDomain(o *offer.Offer) OfferDTO {
	return OfferDTO{
		ID:            o.ID().Bytes(),
		DeliveryID:    o.DeliveryID().Bytes(),
		CourierID:     o.CourierID().Bytes(),
		RadiusTier:    o.RadiusTier(),
		RadiusKm:      o.RadiusKm(),
		DispatchRound: o.DispatchRound(),
		CreatedAt:     o.CreatedAt(),
		ExpiresAt:     o.ExpiresAt(),
		ResolvedAt:    o.ResolvedAt(),
		Outcome:       int(o.Outcome()),
	}
}

func toDomain(dto OfferDTO) (*offer.Offer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	deliveryID, err := kernel.UUIDFromBytes(dto.DeliveryID[:])
	if err != nil {
		return nil, err
	}
	courierID, err := kernel.UUIDFromBytes(dto.CourierID[:])
	if err != nil {
		return nil, err
	}

	return offer.RestoreOffer(offer.Snapshot{
		ID:            id,
		DeliveryID:    deliveryID,
		CourierID:     courierID,
		RadiusTier:    dto.RadiusTier,
		RadiusKm:      dto.RadiusKm,
		DispatchRound: dto.DispatchRound,
		CreatedAt:     dto.CreatedAt,
		ExpiresAt:     dto.ExpiresAt,
		ResolvedAt:    dto.ResolvedAt,
		Outcome:       offer.Outcome(dto.Outcome),
	})
}
