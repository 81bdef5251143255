package commands

import (
	"errors"
)

var (
	// ErrNoCourierAvailable means every search ring was exhausted. The delivery
	// stays Pending and is retried by the periodic re-dispatch job.
	ErrNoCourierAvailable = errors.New("no courier available")
	// ErrDispatchInProgress means another worker holds the delivery's dispatch lock.
	ErrDispatchInProgress = errors.New("dispatch already in progress")
	// ErrNotAssignedCourier is returned when a courier acts on a delivery assigned to someone else.
	ErrNotAssignedCourier = errors.New("delivery is assigned to another courier")
)
