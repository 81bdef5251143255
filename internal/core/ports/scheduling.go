package ports

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Clock is the time source used for every deadline comparison.
type Clock interface {
	Now() time.Time
}

// DispatchTrigger queues a delivery for background matching. Enqueue never
// blocks; a full queue is drained later by the periodic re-dispatch job.
type DispatchTrigger interface {
	Enqueue(deliveryID kernel.UUID) bool
}

// OfferExpiryScheduler arms and disarms per-offer expiry timers.
type OfferExpiryScheduler interface {
	Schedule(offerID kernel.UUID, at time.Time)
	Cancel(offerID kernel.UUID)
}
