// Package deliveryrepo persists delivery aggregates together with their frozen
// pricing and one-time codes.
package deliveryrepo

import (
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryDTO is the row layout of the deliveries table.
type DeliveryDTO struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Status         int             `gorm:"type:smallint;not null;index:idx_deliveries_status_created,priority:1"`
	SenderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CourierID      *uuid.UUID      `gorm:"type:uuid;index"`
	Pickup         LocationDTO     `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff        LocationDTO     `gorm:"embedded;embeddedPrefix:dropoff_"`
	PaymentMethod  int             `gorm:"type:smallint;not null"`
	DistanceKm     float64         `gorm:"not null"`
	TotalPrice     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PlatformFee    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CourierEarning decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PickupOTP      string          `gorm:"column:pickup_otp;type:char(4);not null"`
	DropoffOTP     string          `gorm:"column:dropoff_otp;type:char(4);not null"`
	DispatchRound  int             `gorm:"not null;default:0"`
	CancelReason   string          `gorm:"type:varchar(500);not null;default:''"`
	CreatedAt      time.Time       `gorm:"not null;index:idx_deliveries_status_created,priority:2"`
	AssignedAt     *time.Time
	PickedUpAt     *time.Time
	InTransitAt    *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
}

// TableName overrides GORM's default naming convention.
func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// LocationDTO is an embedded WGS84 point.
type LocationDTO struct {
	Lat float64 `gorm:"not null"`
	Lon float64 `gorm:"not null"`
}

func fromDomain(d *delivery.Delivery) DeliveryDTO {
	var courierID *uuid.UUID
	if id := d.CourierID(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	pricing := d.Pricing()
	return DeliveryDTO{
		ID:             d.ID().Bytes(),
		Status:         int(d.Status()),
		SenderID:       d.SenderID().Bytes(),
		CourierID:      courierID,
		Pickup:         LocationDTO{Lat: d.Pickup().Lat(), Lon: d.Pickup().Lon()},
		Dropoff:        LocationDTO{Lat: d.Dropoff().Lat(), Lon: d.Dropoff().Lon()},
		PaymentMethod:  int(d.PaymentMethod()),
		DistanceKm:     pricing.DistanceKm(),
		TotalPrice:     pricing.TotalPrice(),
		PlatformFee:    pricing.PlatformFee(),
		CourierEarning: pricing.CourierEarning(),
		PickupOTP:      d.PickupOTP().String(),
		DropoffOTP:     d.DropoffOTP().String(),
		DispatchRound:  d.DispatchRound(),
		CancelReason:   d.CancelReason(),
		CreatedAt:      d.CreatedAt(),
		AssignedAt:     d.AssignedAt(),
		PickedUpAt:     d.PickedUpAt(),
		InTransitAt:    d.InTransitAt(),
		CompletedAt:    d.CompletedAt(),
		CancelledAt:    d.CancelledAt(),
	}
}

func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	senderID, err := kernel.UUIDFromBytes(dto.SenderID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes(dto.CourierID[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	pickup, err := kernel.NewLocation(dto.Pickup.Lat, dto.Pickup.Lon)
	if err != nil {
		return nil, err
	}
	dropoff, err := kernel.NewLocation(dto.Dropoff.Lat, dto.Dropoff.Lon)
	if err != nil {
		return nil, err
	}

	pricing, err := delivery.NewPricing(dto.DistanceKm, dto.TotalPrice, dto.PlatformFee, dto.CourierEarning)
	if err != nil {
		return nil, err
	}

	pickupOTP, err := delivery.OTPFromString(dto.PickupOTP)
	if err != nil {
		return nil, err
	}
	dropoffOTP, err := delivery.OTPFromString(dto.DropoffOTP)
	if err != nil {
		return nil, err
	}

	return delivery.RestoreDelivery(delivery.Snapshot{
		ID:            id,
		Status:        delivery.Status(dto.Status),
		SenderID:      senderID,
		CourierID:     courierID,
		Pickup:        pickup,
		Dropoff:       dropoff,
		PaymentMethod: delivery.PaymentMethod(dto.PaymentMethod),
		Pricing:       pricing,
		PickupOTP:     pickupOTP,
		DropoffOTP:    dropoffOTP,
		DispatchRound: dto.DispatchRound,
		CancelReason:  dto.CancelReason,
		CreatedAt:     dto.CreatedAt,
		AssignedAt:    dto.AssignedAt,
		PickedUpAt:    dto.PickedUpAt,
		InTransitAt:   dto.InTransitAt,
		CompletedAt:   dto.CompletedAt,
		CancelledAt:   dto.CancelledAt,
	})
}
