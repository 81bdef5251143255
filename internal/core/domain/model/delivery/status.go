package delivery

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of a delivery.
//
// State transitions:
//
//	Pending ──> Assigned ──> PickedUp ──> InTransit ──> Completed
//	   ^           │            │  └────────────────────────^
//	   └─release───┘            │
//	Pending, Assigned, PickedUp, InTransit ──> Cancelled
//
// PickedUp may go straight to Completed when the courier skips StartTransit.
type Status int

const (
	// Unknown is the zero value and never valid.
	Unknown Status = iota
	// Pending deliveries wait for a courier to accept an offer.
	Pending
	// Assigned deliveries have a courier heading to the pickup point.
	Assigned
	// PickedUp deliveries passed the pickup OTP check.
	PickedUp
	// InTransit deliveries are on the way to the drop-off point.
	InTransit
	// Completed deliveries passed the drop-off OTP check and are settled. Final.
	Completed
	// Cancelled deliveries were stopped before completion. Final.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Pending:   "Pending",
		Assigned:  "Assigned",
		PickedUp:  "PickedUp",
		InTransit: "InTransit",
		Completed: "Completed",
		Cancelled: "Cancelled",
	}
}

// Validate rejects Unknown and values outside the enum.
func (s Status) Validate() error {
	if s < Pending || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsFinal reports whether no further transition is possible.
func (s Status) IsFinal() bool {
	return s == Completed || s == Cancelled
}

// HasCourier reports whether a delivery in this status must carry a courier.
func (s Status) HasCourier() bool {
	return s == Assigned || s == PickedUp || s == InTransit || s == Completed
}

// ValidateCanHaveCourier checks consistency between status and courier assignment.
// Cancelled deliveries may or may not keep the courier they had.
func (s Status) ValidateCanHaveCourier(courier bool) error {
	if s == Cancelled {
		return nil
	}
	if courier != s.HasCourier() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s does not match courier assignment %t", s, courier),
		)
	}
	return nil
}

// Assign moves Pending to Assigned.
func (s Status) Assign() (Status, error) {
	return s.transition(Assigned, "assign", Pending)
}

// PickUp moves Assigned to PickedUp.
func (s Status) PickUp() (Status, error) {
	return s.transition(PickedUp, "pick up", Assigned)
}

// StartTransit moves PickedUp to InTransit.
func (s Status) StartTransit() (Status, error) {
	return s.transition(InTransit, "start transit", PickedUp)
}

// Complete moves PickedUp or InTransit to Completed.
func (s Status) Complete() (Status, error) {
	return s.transition(Completed, "complete", PickedUp, InTransit)
}

// Cancel moves any non-final status to Cancelled.
func (s Status) Cancel() (Status, error) {
	return s.transition(Cancelled, "cancel", Pending, Assigned, PickedUp, InTransit)
}

// Release moves Assigned back to Pending.
func (s Status) Release() (Status, error) {
	return s.transition(Pending, "release", Assigned)
}

func (s Status) transition(to Status, action string, from ...Status) (Status, error) {
	for _, allowed := range from {
		if s == allowed {
			return to, nil
		}
	}
	return Unknown, errs.NewInvalidStateError("delivery", s.String(), action)
}
