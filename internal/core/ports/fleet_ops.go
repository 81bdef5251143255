package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// NoCourierAvailableEvent reports a delivery that exhausted every search ring.
type NoCourierAvailableEvent struct {
	DeliveryID    kernel.UUID
	Pickup        kernel.Location
	MaxRadiusKm   float64
	DispatchRound int
	OccurredAt    time.Time
}

// FleetOps escalates dispatch problems to human operators.
type FleetOps interface {
	NoCourierAvailable(ctx context.Context, event NoCourierAvailableEvent) error
}
