package offer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// DefaultTimeout is how long a courier has to answer an offer.
const DefaultTimeout = 30 * time.Second

var (
	// ErrOfferIsNotConstructed is returned when using an improperly initialized Offer.
	ErrOfferIsNotConstructed = errors.New("Offer must be created via NewOffer or RestoreOffer constructor")
	// ErrOfferExpired is returned when an offer is answered at or after its deadline.
	ErrOfferExpired = errors.New("offer expired")
	// ErrAlreadyAssigned is returned when the offer, the delivery or the courier
	// is no longer free to complete an acceptance.
	ErrAlreadyAssigned = errors.New("already assigned")
	// ErrNotOfferee is returned when a courier answers an offer made to someone else.
	ErrNotOfferee = errors.New("offer was made to another courier")
)

// Snapshot carries the persisted state of an Offer for RestoreOffer.
type Snapshot struct {
	ID            kernel.UUID
	DeliveryID    kernel.UUID
	CourierID     kernel.UUID
	RadiusTier    int
	RadiusKm      float64
	DispatchRound int
	CreatedAt     time.Time
	ExpiresAt     time.Time
	ResolvedAt    *time.Time
	Outcome       Outcome
}

// Offer is a time-boxed proposal of one delivery to one courier.
//
// The deadline check is strict: an answer at now >= expires_at is late.
// All mutators are meant to run while the offer row is locked so that
// accept and expire can never both win.
type Offer struct {
	id            kernel.UUID
	deliveryID    kernel.UUID
	courierID     kernel.UUID
	radiusTier    int
	radiusKm      float64
	dispatchRound int
	createdAt     time.Time
	expiresAt     time.Time
	resolvedAt    *time.Time
	outcome       Outcome
	guard         guard.ConstructorGuard
}

// NewOffer creates a Pending offer expiring timeout after createdAt.
func NewOffer(
	id kernel.UUID,
	deliveryID kernel.UUID,
	courierID kernel.UUID,
	radiusTier int,
	radiusKm float64,
	dispatchRound int,
	createdAt time.Time,
	timeout time.Duration,
) (*Offer, error) {
	if timeout <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("timeout", fmt.Errorf("%s is not positive", timeout))
	}

	return build(Snapshot{
		ID:            id,
		DeliveryID:    deliveryID,
		CourierID:     courierID,
		RadiusTier:    radiusTier,
		RadiusKm:      radiusKm,
		DispatchRound: dispatchRound,
		CreatedAt:     createdAt,
		ExpiresAt:     createdAt.Add(timeout),
		Outcome:       OutcomePending,
	})
}

// RestoreOffer rebuilds an Offer from persisted state.
func RestoreOffer(s Snapshot) (*Offer, error) {
	if err := s.Outcome.Validate(); err != nil {
		return nil, err
	}
	if (s.Outcome == OutcomePending) != (s.ResolvedAt == nil) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"resolved_at",
			fmt.Errorf("%s offer with resolved_at set: %t", s.Outcome, s.ResolvedAt != nil),
		)
	}
	return build(s)
}

func build(s Snapshot) (*Offer, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.DeliveryID.Validate(),
		s.CourierID.Validate(),
		validateRadius(s.RadiusTier, s.RadiusKm),
		validateRound(s.DispatchRound),
	); err != nil {
		return nil, err
	}
	if !s.ExpiresAt.After(s.CreatedAt) {
		return nil, errs.NewValueIsInvalidErrorWithCause("expires_at", errors.New("must be after created_at"))
	}

	return &Offer{
		id:            s.ID,
		deliveryID:    s.DeliveryID,
		courierID:     s.CourierID,
		radiusTier:    s.RadiusTier,
		radiusKm:      s.RadiusKm,
		dispatchRound: s.DispatchRound,
		createdAt:     s.CreatedAt,
		expiresAt:     s.ExpiresAt,
		resolvedAt:    s.ResolvedAt,
		outcome:       s.Outcome,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// Validate checks that the Offer was created through a constructor.
func (o *Offer) Validate() error {
	if o == nil {
		return ErrOfferIsNotConstructed
	}
	return o.guard.Validate(ErrOfferIsNotConstructed)
}

func (o *Offer) ID() kernel.UUID { return o.id }
func (o *Offer) DeliveryID() kernel.UUID { return o.deliveryID }
func (o *Offer) CourierID() kernel.UUID { return o.courierID }
func (o *Offer) RadiusTier() int { return o.radiusTier }
func (o *Offer) RadiusKm() float64 { return o.radiusKm }
func (o *Offer) DispatchRound() int { return o.dispatchRound }
func (o *Offer) CreatedAt() time.Time { return o.createdAt }
func (o *Offer) ExpiresAt() time.Time { return o.expiresAt }
func (o *Offer) ResolvedAt() *time.Time { return o.resolvedAt }
func (o *Offer) Outcome() Outcome { return o.outcome }
func (o *Offer) IsPending() bool { return o.outcome == OutcomePending }

// IsDue reports whether the deadline has passed at now.
func (o *Offer) IsDue(now time.Time) bool {
	return !now.Before(o.expiresAt)
}

// Accept resolves the offer for courierID.
//
// A Pending offer answered at or after expires_at is marked Expired and
// ErrOfferExpired is returned; the caller must still persist that change.
func (o *Offer) Accept(courierID kernel.UUID, now time.Time) error {
	if err := o.checkAnswer(courierID); err != nil {
		return err
	}
	if o.IsDue(now) {
		o.resolve(OutcomeExpired, now)
		return ErrOfferExpired
	}

	o.resolve(OutcomeAccepted, now)
	return nil
}

// Reject records the courier declining the offer.
func (o *Offer) Reject(courierID kernel.UUID, now time.Time) error {
	if err := o.checkAnswer(courierID); err != nil {
		return err
	}

	o.resolve(OutcomeRejected, now)
	return nil
}

// ExpireIfDue marks a Pending offer Expired once its deadline passed.
// It reports whether the offer changed.
func (o *Offer) ExpireIfDue(now time.Time) bool {
	if !o.IsPending() || !o.IsDue(now) {
		return false
	}
	o.resolve(OutcomeExpired, now)
	return true
}

// Withdraw closes a Pending offer as Rejected on behalf of the platform, for
// example when its delivery is cancelled. It reports whether the offer changed.
func (o *Offer) Withdraw(now time.Time) bool {
	if !o.IsPending() {
		return false
	}
	o.resolve(OutcomeRejected, now)
	return true
}

func (o *Offer) checkAnswer(courierID kernel.UUID) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if !o.courierID.IsEqual(courierID) {
		return ErrNotOfferee
	}
	switch o.outcome {
	case OutcomePending:
		return nil
	case OutcomeExpired:
		return ErrOfferExpired
	default:
		return ErrAlreadyAssigned
	}
}

func (o *Offer) resolve(outcome Outcome, at time.Time) {
	o.outcome = outcome
	o.resolvedAt = &at
}

func validateRadius(tier int, km float64) error {
	if tier < 0 {
		return errs.NewValueIsInvalidErrorWithCause("radius_tier", fmt.Errorf("%d is negative", tier))
	}
	if math.IsNaN(km) || math.IsInf(km, 0) || km <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("radius_km", fmt.Errorf("%v is not a positive radius", km))
	}
	return nil
}

func validateRound(round int) error {
	if round < 0 {
		return errs.NewValueIsInvalidErrorWithCause("dispatch_round", fmt.Errorf("%d is negative", round))
	}
	return nil
}
