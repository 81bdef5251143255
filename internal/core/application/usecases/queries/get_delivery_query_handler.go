package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetDeliveryQueryHandler reads a delivery straight from the deliveries table.
type GetDeliveryQueryHandler struct {
	db *gorm.DB
}

func NewGetDeliveryQueryHandler(db *gorm.DB) GetDeliveryQueryHandler {
	return GetDeliveryQueryHandler{db: db}
}

// Handle returns errs.ErrObjectNotFound for an unknown delivery.
func (h GetDeliveryQueryHandler) Handle(ctx context.Context, query GetDeliveryQuery) (GetDeliveryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id, status, sender_id, courier_id,
			pickup_lat, pickup_lon, dropoff_lat, dropoff_lon,
			payment_method, distance_km, total_price, platform_fee, courier_earning,
			pickup_otp, dropoff_otp, dispatch_round, cancel_reason,
			created_at, assigned_at, picked_up_at, in_transit_at, completed_at, cancelled_at
		FROM deliveries
		WHERE id = ?
	`, query.DeliveryID().Bytes()).Row()

	var (
		id, senderID                                 uuid.UUID
		courierID                                    *uuid.UUID
		status, paymentMethod, dispatchRound         int
		pickupLat, pickupLon, dropoffLat, dropoffLon float64
		distanceKm                                   float64
		totalPrice, platformFee, courierEarning      decimal.Decimal
		pickupOTP, dropoffOTP, cancelReason          string
		createdAt                                    time.Time
		assignedAt, pickedUpAt, inTransitAt          *time.Time
		completedAt, cancelledAt                     *time.Time
	)
	err := row.Scan(
		&id, &status, &senderID, &courierID,
		&pickupLat, &pickupLon, &dropoffLat, &dropoffLon,
		&paymentMethod, &distanceKm, &totalPrice, &platformFee, &courierEarning,
		&pickupOTP, &dropoffOTP, &dispatchRound, &cancelReason,
		&createdAt, &assignedAt, &pickedUpAt, &inTransitAt, &completedAt, &cancelledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetDeliveryQueryResponse{}, errs.NewObjectNotFoundError("delivery", query.DeliveryID().String())
		}
		return GetDeliveryQueryResponse{}, err
	}

	resp := GetDeliveryQueryResponse{
		Status:         delivery.Status(status).String(),
		PaymentMethod:  delivery.PaymentMethod(paymentMethod).String(),
		DistanceKm:     distanceKm,
		TotalPrice:     totalPrice,
		PlatformFee:    platformFee,
		CourierEarning: courierEarning,
		PickupOTP:      pickupOTP,
		DropoffOTP:     dropoffOTP,
		DispatchRound:  dispatchRound,
		CancelReason:   cancelReason,
		CreatedAt:      createdAt,
		AssignedAt:     assignedAt,
		PickedUpAt:     pickedUpAt,
		InTransitAt:    inTransitAt,
		CompletedAt:    completedAt,
		CancelledAt:    cancelledAt,
	}

	if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetDeliveryQueryResponse{}, err
	}
	if resp.SenderID, err = kernel.UUIDFromBytes(senderID[:]); err != nil {
		return GetDeliveryQueryResponse{}, err
	}
	if courierID != nil {
		cID, idErr := kernel.UUIDFromBytes(courierID[:])
		if idErr != nil {
			return GetDeliveryQueryResponse{}, idErr
		}
		resp.CourierID = &cID
	}
	if resp.Pickup, err = kernel.NewLocation(pickupLat, pickupLon); err != nil {
		return GetDeliveryQueryResponse{}, err
	}
	if resp.Dropoff, err = kernel.NewLocation(dropoffLat, dropoffLon); err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	return resp, nil
}
