package delivery

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// MaxCancelReasonLength bounds the free-text cancel reason.
const MaxCancelReasonLength = 500

var (
	// ErrDeliveryIsNotConstructed is returned when using an improperly initialized Delivery.
	ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery or RestoreDelivery constructor")
	// ErrOtpMismatch is returned when the presented code does not equal the stored OTP.
	// The delivery is left unchanged and the caller may retry.
	ErrOtpMismatch = errors.New("otp mismatch")
)

// Snapshot carries the persisted state of a Delivery for RestoreDelivery.
type Snapshot struct {
	ID            kernel.UUID
	Status        Status
	SenderID      kernel.UUID
	CourierID     *kernel.UUID
	Pickup        kernel.Location
	Dropoff       kernel.Location
	PaymentMethod PaymentMethod
	Pricing       Pricing
	PickupOTP     OTP
	DropoffOTP    OTP
	DispatchRound int
	CancelReason  string
	CreatedAt     time.Time
	AssignedAt    *time.Time
	PickedUpAt    *time.Time
	InTransitAt   *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
}

// Delivery is the aggregate root for a pickup/drop-off request.
//
// Delivery follows these invariants:
//   - Pricing is frozen at creation and fee + earning == total
//   - A courier is set exactly in Assigned, PickedUp, InTransit and Completed
//   - Pickup and drop-off require their own OTP
//   - Completed and Cancelled are final
//
// The aggregate does not touch wallets; settlement postings are produced by
// the settlement engine from the transition that was just made.
type Delivery struct {
	id            kernel.UUID
	status        Status
	senderID      kernel.UUID
	courierID     *kernel.UUID
	pickup        kernel.Location
	dropoff       kernel.Location
	paymentMethod PaymentMethod
	pricing       Pricing
	pickupOTP     OTP
	dropoffOTP    OTP
	dispatchRound int
	cancelReason  string
	createdAt     time.Time
	assignedAt    *time.Time
	pickedUpAt    *time.Time
	inTransitAt   *time.Time
	completedAt   *time.Time
	cancelledAt   *time.Time
	guard         guard.ConstructorGuard
}

// NewDelivery creates a Pending delivery with fresh pickup and drop-off OTPs.
//
// Example:
//
//	d, err := delivery.NewDelivery(kernel.NewUUID(), senderID, pickup, dropoff,
//	    delivery.PaymentCashP2P, pricing, clock.Now())
func NewDelivery(
	id kernel.UUID,
	senderID kernel.UUID,
	pickup kernel.Location,
	dropoff kernel.Location,
	method PaymentMethod,
	pricing Pricing,
	createdAt time.Time,
) (*Delivery, error) {
	d := &Delivery{
		status:    Pending,
		pricing:   pricing,
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setSender(senderID),
		d.setRoute(pickup, dropoff),
		d.setPaymentMethod(method),
	); err != nil {
		return nil, err
	}

	pickupOTP, err := NewOTP()
	if err != nil {
		return nil, err
	}
	dropoffOTP, err := NewOTP()
	if err != nil {
		return nil, err
	}
	d.pickupOTP = pickupOTP
	d.dropoffOTP = dropoffOTP

	return d, nil
}

// RestoreDelivery rebuilds a Delivery from persisted state.
func RestoreDelivery(s Snapshot) (*Delivery, error) {
	d := &Delivery{
		courierID:     s.CourierID,
		pricing:       s.Pricing,
		pickupOTP:     s.PickupOTP,
		dropoffOTP:    s.DropoffOTP,
		dispatchRound: s.DispatchRound,
		cancelReason:  s.CancelReason,
		createdAt:     s.CreatedAt,
		assignedAt:    s.AssignedAt,
		pickedUpAt:    s.PickedUpAt,
		inTransitAt:   s.InTransitAt,
		completedAt:   s.CompletedAt,
		cancelledAt:   s.CancelledAt,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(s.ID),
		d.setSender(s.SenderID),
		d.setRoute(s.Pickup, s.Dropoff),
		d.setPaymentMethod(s.PaymentMethod),
		s.Status.Validate(),
		s.Status.ValidateCanHaveCourier(s.CourierID != nil),
	); err != nil {
		return nil, err
	}
	if s.PickupOTP.IsZero() || s.DropoffOTP.IsZero() {
		return nil, errs.NewValueIsRequiredError("otp")
	}
	if s.DispatchRound < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("dispatch_round", fmt.Errorf("%d is negative", s.DispatchRound))
	}
	d.status = s.Status

	return d, nil
}

// Validate checks that the Delivery was created through a constructor.
func (d *Delivery) Validate() error {
	if d == nil {
		return ErrDeliveryIsNotConstructed
	}
	return d.guard.Validate(ErrDeliveryIsNotConstructed)
}

func (d *Delivery) ID() kernel.UUID { return d.id }
func (d *Delivery) Status() Status { return d.status }
func (d *Delivery) SenderID() kernel.UUID { return d.senderID }
func (d *Delivery) Pickup() kernel.Location { return d.pickup }
func (d *Delivery) Dropoff() kernel.Location { return d.dropoff }
func (d *Delivery) PaymentMethod() PaymentMethod { return d.paymentMethod }
func (d *Delivery) Pricing() Pricing { return d.pricing }
func (d *Delivery) PickupOTP() OTP { return d.pickupOTP }
func (d *Delivery) DropoffOTP() OTP { return d.dropoffOTP }
func (d *Delivery) DispatchRound() int { return d.dispatchRound }
func (d *Delivery) CancelReason() string { return d.cancelReason }
func (d *Delivery) CreatedAt() time.Time { return d.createdAt }
func (d *Delivery) AssignedAt() *time.Time { return d.assignedAt }
func (d *Delivery) PickedUpAt() *time.Time { return d.pickedUpAt }
func (d *Delivery) InTransitAt() *time.Time { return d.inTransitAt }
func (d *Delivery) CompletedAt() *time.Time { return d.completedAt }
func (d *Delivery) CancelledAt() *time.Time { return d.cancelledAt }

// CourierID returns the assigned courier, or nil while Pending.
func (d *Delivery) CourierID() *kernel.UUID {
	if d.courierID == nil {
		return nil
	}
	id := *d.courierID
	return &id
}

// IsPrepaid reports whether the sender's wallet was escrowed at creation.
func (d *Delivery) IsPrepaid() bool {
	return d.paymentMethod == PaymentPrepaidWallet
}

// IsAwaitingCourier reports whether the delivery can still take an offer acceptance.
func (d *Delivery) IsAwaitingCourier() bool {
	return d.status == Pending && d.courierID == nil
}

// Assign binds the delivery to courierID. Only a Pending delivery without a courier can be assigned.
func (d *Delivery) Assign(courierID kernel.UUID, at time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if d.courierID != nil {
		return errs.NewInvalidStateError("delivery", d.status.String(), "assign")
	}

	next, err := d.status.Assign()
	if err != nil {
		return err
	}

	d.status = next
	d.courierID = &courierID
	d.assignedAt = &at
	return nil
}

// ConfirmPickup checks the pickup OTP and moves Assigned to PickedUp.
func (d *Delivery) ConfirmPickup(code string, at time.Time) error {
	next, err := d.status.PickUp()
	if err != nil {
		return err
	}
	if !d.pickupOTP.Matches(code) {
		return ErrOtpMismatch
	}

	d.status = next
	d.pickedUpAt = &at
	return nil
}

// StartTransit moves PickedUp to InTransit.
func (d *Delivery) StartTransit(at time.Time) error {
	next, err := d.status.StartTransit()
	if err != nil {
		return err
	}

	d.status = next
	d.inTransitAt = &at
	return nil
}

// ConfirmDropoff checks the drop-off OTP and completes the delivery.
func (d *Delivery) ConfirmDropoff(code string, at time.Time) error {
	next, err := d.status.Complete()
	if err != nil {
		return err
	}
	if !d.dropoffOTP.Matches(code) {
		return ErrOtpMismatch
	}

	d.status = next
	d.completedAt = &at
	return nil
}

// Cancel stops a delivery that is not yet final. The courier, if any, stays
// recorded on the delivery; callers free the courier's account.
func (d *Delivery) Cancel(reason string, at time.Time) error {
	reason = strings.TrimSpace(reason)
	if len(reason) > MaxCancelReasonLength {
		return errs.NewValueIsOutOfRangeError("reason", len(reason), 0, MaxCancelReasonLength)
	}

	next, err := d.status.Cancel()
	if err != nil {
		return err
	}

	d.status = next
	d.cancelReason = reason
	d.cancelledAt = &at
	return nil
}

// Release returns an Assigned delivery to Pending and reports the courier that
// held it. The dispatch round is kept so the same courier is not offered the
// delivery again in this round.
func (d *Delivery) Release() (kernel.UUID, error) {
	next, err := d.status.Release()
	if err != nil {
		return kernel.UUID{}, err
	}

	released := *d.courierID
	d.status = next
	d.courierID = nil
	d.assignedAt = nil
	return released, nil
}

// StartNextDispatchRound is called when every radius ring was exhausted.
// Offers from earlier rounds no longer exclude their couriers.
func (d *Delivery) StartNextDispatchRound() error {
	if !d.IsAwaitingCourier() {
		return errs.NewInvalidStateError("delivery", d.status.String(), "start dispatch round")
	}
	d.dispatchRound++
	return nil
}

func (d *Delivery) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Delivery) setSender(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.senderID = id
	return nil
}

func (d *Delivery) setRoute(pickup, dropoff kernel.Location) error {
	if err := errors.Join(pickup.Validate(), dropoff.Validate()); err != nil {
		return err
	}
	d.pickup = pickup
	d.dropoff = dropoff
	return nil
}

func (d *Delivery) setPaymentMethod(m PaymentMethod) error {
	if err := m.Validate(); err != nil {
		return err
	}
	d.paymentMethod = m
	return nil
}
