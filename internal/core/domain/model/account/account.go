package account

import (
	"errors"
	"fmt"
	"math"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

const (
	// RatingMin is the lowest courier rating.
	RatingMin = 0.0
	// RatingMax is the highest courier rating.
	RatingMax = 5.0
	// defaultAcceptanceRate is reported for couriers who have not received any offer yet.
	defaultAcceptanceRate = 1.0
)

// Domain errors for account operations.
var (
	// ErrAccountIsNotConstructed is returned when using an improperly initialized Account.
	ErrAccountIsNotConstructed = errors.New("Account must be created via NewAccount or RestoreAccount constructor")
	// ErrNotACourier is returned when a courier-only operation is invoked on a business account.
	ErrNotACourier = errors.New("account is not a courier")
	// ErrCourierBusy is returned when a courier already holds an active delivery.
	ErrCourierBusy = errors.New("courier already has an active delivery")
	// ErrAmountMustBePositive is returned when Credit or Debit receive a zero or negative amount.
	ErrAmountMustBePositive = errs.NewValueIsInvalidErrorWithCause("amount", errors.New("amount must be greater than 0"))
)

// Snapshot carries the persisted state of an Account for RestoreAccount.
type Snapshot struct {
	ID                kernel.UUID
	Role              Role
	Balance           decimal.Decimal
	DebtCeiling       decimal.Decimal
	IsVerified        bool
	IsOnline          bool
	CurrentDeliveryID *kernel.UUID
	Location          *kernel.Location
	Rating            float64
	OffersReceived    int
	OffersAccepted    int
	Version           int64
}

// Account is the wallet holder aggregate for couriers and businesses.
//
// Key responsibilities:
//   - Owning the balance, which changes only through Credit and Debit
//   - Producing one LedgerEntry per balance change, so balance == Σ entries
//   - Deciding assignment eligibility against the debt ceiling (the kill switch)
//   - Holding at most one active delivery for couriers
//   - Tracking dispatch inputs: presence, location, rating and acceptance history
//
// Business rules:
//   - Debits are never blocked by the debt ceiling; the ceiling only gates
//     future assignments (IsEligibleForAssignment)
//   - Amounts are kept at two fractional digits
//   - Version is the optimistic concurrency token checked by the repository
type Account struct {
	id                kernel.UUID
	role              Role
	balance           decimal.Decimal
	debtCeiling       decimal.Decimal
	isVerified        bool
	isOnline          bool
	currentDeliveryID *kernel.UUID
	location          *kernel.Location
	rating            float64
	offersReceived    int
	offersAccepted    int
	version           int64
	guard             guard.ConstructorGuard
}

// NewAccount opens a wallet with a zero balance.
//
// Example:
//
//	courier, err := account.NewAccount(kernel.NewUUID(), account.RoleCourier, decimal.NewFromInt(5000))
//	if err != nil {
//	    return err
//	}
func NewAccount(id kernel.UUID, role Role, debtCeiling decimal.Decimal) (*Account, error) {
	a := &Account{
		balance: decimal.Zero,
		rating:  RatingMax,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setID(id),
		a.setRole(role),
		a.setDebtCeiling(debtCeiling),
	); err != nil {
		return nil, err
	}

	return a, nil
}

// RestoreAccount rebuilds an Account from persisted state.
func RestoreAccount(s Snapshot) (*Account, error) {
	a := &Account{
		balance:           kernel.RoundMoney(s.Balance),
		isVerified:        s.IsVerified,
		isOnline:          s.IsOnline,
		currentDeliveryID: s.CurrentDeliveryID,
		location:          s.Location,
		version:           s.Version,
		guard:             guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setID(s.ID),
		a.setRole(s.Role),
		a.setDebtCeiling(s.DebtCeiling),
		a.setRating(s.Rating),
		a.setOfferCounters(s.OffersReceived, s.OffersAccepted),
	); err != nil {
		return nil, err
	}

	return a, nil
}

// Validate checks that the Account was created through a constructor.
func (a *Account) Validate() error {
	if a == nil {
		return ErrAccountIsNotConstructed
	}
	return a.guard.Validate(ErrAccountIsNotConstructed)
}

func (a *Account) ID() kernel.UUID { return a.id }
func (a *Account) Role() Role { return a.role }
func (a *Account) Balance() decimal.Decimal { return a.balance }
func (a *Account) DebtCeiling() decimal.Decimal { return a.debtCeiling }
func (a *Account) IsVerified() bool { return a.isVerified }
func (a *Account) IsOnline() bool { return a.isOnline }
func (a *Account) Rating() float64 { return a.rating }
func (a *Account) OffersReceived() int { return a.offersReceived }
func (a *Account) OffersAccepted() int { return a.offersAccepted }
func (a *Account) Version() int64 { return a.version }
func (a *Account) IsCourier() bool { return a.role == RoleCourier }

// CurrentDeliveryID returns the courier's active delivery, or nil when free.
func (a *Account) CurrentDeliveryID() *kernel.UUID {
	if a.currentDeliveryID == nil {
		return nil
	}
	id := *a.currentDeliveryID
	return &id
}

// Location returns the last reported courier position, or nil if none was reported.
func (a *Account) Location() *kernel.Location {
	if a.location == nil {
		return nil
	}
	loc := *a.location
	return &loc
}

// AcceptanceRate is accepted/received offers, or 1.0 without history.
func (a *Account) AcceptanceRate() float64 {
	if a.offersReceived == 0 {
		return defaultAcceptanceRate
	}
	return float64(a.offersAccepted) / float64(a.offersReceived)
}

// IsEligibleForAssignment is the kill switch: true iff balance >= -debt_ceiling.
func (a *Account) IsEligibleForAssignment() bool {
	return a.balance.GreaterThanOrEqual(a.debtCeiling.Neg())
}

// IsAvailableForDispatch reports whether the matcher may offer this account a delivery:
// an online, verified, eligible courier without an active delivery and with a known position.
func (a *Account) IsAvailableForDispatch() bool {
	return a.IsCourier() &&
		a.isOnline &&
		a.isVerified &&
		a.IsEligibleForAssignment() &&
		a.currentDeliveryID == nil &&
		a.location != nil
}

// Credit adds a positive amount and returns the matching ledger entry.
// It always succeeds for a constructed account and a positive amount.
func (a *Account) Credit(
	amount decimal.Decimal,
	reason Reason,
	deliveryID *kernel.UUID,
	at time.Time,
) (*LedgerEntry, error) {
	if err := a.validatePosting(amount, reason); err != nil {
		return nil, err
	}
	return a.post(kernel.RoundMoney(amount), reason, deliveryID, at)
}

// Debit subtracts a positive amount and returns the matching ledger entry.
// The balance may become negative, including below the debt ceiling.
func (a *Account) Debit(
	amount decimal.Decimal,
	reason Reason,
	deliveryID *kernel.UUID,
	at time.Time,
) (*LedgerEntry, error) {
	if err := a.validatePosting(amount, reason); err != nil {
		return nil, err
	}
	return a.post(kernel.RoundMoney(amount).Neg(), reason, deliveryID, at)
}

// AssignDelivery marks the courier as busy with deliveryID.
func (a *Account) AssignDelivery(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}
	if !a.IsCourier() {
		return ErrNotACourier
	}
	if a.currentDeliveryID != nil {
		if a.currentDeliveryID.IsEqual(deliveryID) {
			return nil
		}
		return ErrCourierBusy
	}

	a.currentDeliveryID = &deliveryID
	return nil
}

// ReleaseDelivery frees the courier if it currently holds deliveryID.
// Releasing a delivery the courier does not hold is a no-op.
func (a *Account) ReleaseDelivery(deliveryID kernel.UUID) {
	if a.currentDeliveryID != nil && a.currentDeliveryID.IsEqual(deliveryID) {
		a.currentDeliveryID = nil
	}
}

// RecordOfferOutcome updates the acceptance history used for ranking.
func (a *Account) RecordOfferOutcome(accepted bool) {
	a.offersReceived++
	if accepted {
		a.offersAccepted++
	}
}

// GoOnline marks the courier as available at location.
func (a *Account) GoOnline(location kernel.Location) error {
	if !a.IsCourier() {
		return ErrNotACourier
	}
	if err := a.setLocation(location); err != nil {
		return err
	}
	a.isOnline = true
	return nil
}

// GoOffline stops the courier from receiving new offers. An active delivery is kept.
func (a *Account) GoOffline() {
	a.isOnline = false
}

// UpdateLocation records a new courier position.
func (a *Account) UpdateLocation(location kernel.Location) error {
	if !a.IsCourier() {
		return ErrNotACourier
	}
	return a.setLocation(location)
}

// Verify marks the account as having passed identity checks.
func (a *Account) Verify() {
	a.isVerified = true
}

// Rate sets the courier's rating.
func (a *Account) Rate(rating float64) error {
	if !a.IsCourier() {
		return ErrNotACourier
	}
	return a.setRating(rating)
}

// CommitVersion advances the optimistic concurrency token. Repositories call
// it after an update guarded by the previous version succeeded.
func (a *Account) CommitVersion() {
	a.version++
}

func (a *Account) validatePosting(amount decimal.Decimal, reason Reason) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := reason.Validate(); err != nil {
		return err
	}
	if !kernel.RoundMoney(amount).IsPositive() {
		return ErrAmountMustBePositive
	}
	return nil
}

func (a *Account) post(
	signed decimal.Decimal,
	reason Reason,
	deliveryID *kernel.UUID,
	at time.Time,
) (*LedgerEntry, error) {
	var related *kernel.UUID
	if deliveryID != nil {
		if err := deliveryID.Validate(); err != nil {
			return nil, err
		}
		id := *deliveryID
		related = &id
	}

	a.balance = kernel.RoundMoney(a.balance.Add(signed))

	return &LedgerEntry{
		id:               kernel.NewUUID(),
		accountID:        a.id,
		amount:           signed,
		reason:           reason,
		deliveryID:       related,
		resultingBalance: a.balance,
		createdAt:        at,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

func (a *Account) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Account) setRole(role Role) error {
	if err := role.Validate(); err != nil {
		return err
	}
	a.role = role
	return nil
}

func (a *Account) setDebtCeiling(ceiling decimal.Decimal) error {
	if ceiling.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("debt_ceiling", fmt.Errorf("%s is negative", ceiling))
	}
	a.debtCeiling = kernel.RoundMoney(ceiling)
	return nil
}

func (a *Account) setRating(rating float64) error {
	if math.IsNaN(rating) || rating < RatingMin || rating > RatingMax {
		return errs.NewValueIsOutOfRangeError("rating", rating, RatingMin, RatingMax)
	}
	a.rating = rating
	return nil
}

func (a *Account) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	a.location = &location
	return nil
}

func (a *Account) setOfferCounters(received, accepted int) error {
	if received < 0 || accepted < 0 || accepted > received {
		return errs.NewValueIsInvalidErrorWithCause(
			"offer_counters",
			fmt.Errorf("accepted %d / received %d is inconsistent", accepted, received),
		)
	}
	a.offersReceived = received
	a.offersAccepted = accepted
	return nil
}
