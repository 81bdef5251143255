// Package accountrepo persists wallet holders. Balances are stored as
// numeric(14,2) and every update is guarded by the account's version column.
package accountrepo

import (
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountDTO is the row layout of the accounts table.
type AccountDTO struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Role              int             `gorm:"type:smallint;not null"`
	Balance           decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	DebtCeiling       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	IsVerified        bool            `gorm:"not null;default:false"`
	IsOnline          bool            `gorm:"not null;default:false;index:idx_accounts_dispatch,priority:1"`
	CurrentDeliveryID *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	LocationLat       *float64        `gorm:"index:idx_accounts_dispatch,priority:2"`
	LocationLon       *float64        `gorm:"index:idx_accounts_dispatch,priority:3"`
	Rating            float64         `gorm:"not null"`
	OffersReceived    int             `gorm:"not null;default:0"`
	OffersAccepted    int             `gorm:"not null;default:0"`
	Version           int64           `gorm:"not null;default:0"`
}

// TableName overrides GORM's default naming convention.
func (AccountDTO) TableName() string {
	return "accounts"
}

func fromDomain(a *account.Account) AccountDTO {
	dto := AccountDTO{
		ID:             a.ID().Bytes(),
		Role:           int(a.Role()),
		Balance:        a.Balance(),
		DebtCeiling:    a.DebtCeiling(),
		IsVerified:     a.IsVerified(),
		IsOnline:       a.IsOnline(),
		Rating:         a.Rating(),
		OffersReceived: a.OffersReceived(),
		OffersAccepted: a.OffersAccepted(),
		Version:        a.Version(),
	}

	if id := a.CurrentDeliveryID(); id != nil {
		raw := id.Bytes()
		dto.CurrentDeliveryID = &raw
	}
	if loc := a.Location(); loc != nil {
		lat, lon := loc.Lat(), loc.Lon()
		dto.LocationLat = &lat
		dto.LocationLon = &lon
	}

	return dto
}

func toDomain(dto AccountDTO) (*account.Account, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var deliveryID *kernel.UUID
	if dto.CurrentDeliveryID != nil {
		dID, dErr := kernel.UUIDFromBytes(dto.CurrentDeliveryID[:])
		if dErr != nil {
			return nil, dErr
		}
		deliveryID = &dID
	}

	var location *kernel.Location
	if dto.LocationLat != nil && dto.LocationLon != nil {
		loc, locErr := kernel.NewLocation(*dto.LocationLat, *dto.LocationLon)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	return account.RestoreAccount(account.Snapshot{
		ID:                id,
		Role:              account.Role(dto.Role),
		Balance:           dto.Balance,
		DebtCeiling:       dto.DebtCeiling,
		IsVerified:        dto.IsVerified,
		IsOnline:          dto.IsOnline,
		CurrentDeliveryID: deliveryID,
		Location:          location,
		Rating:            dto.Rating,
		OffersReceived:    dto.OffersReceived,
		OffersAccepted:    dto.OffersAccepted,
		Version:           dto.Version,
	})
}

func toDomainList(dtos []AccountDTO) ([]*account.Account, error) {
	accounts := make([]*account.Account, 0, len(dtos))
	for _, dto := range dtos {
		a, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}
