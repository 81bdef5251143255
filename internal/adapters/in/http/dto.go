package http

import (
	"time"

	"dispatch/internal/core/application/ledger"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

type Location struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

func (l Location) toKernel() (kernel.Location, error) {
	return kernel.NewLocation(l.Lat, l.Lon)
}

func locationFrom(l kernel.Location) Location {
	return Location{Lat: l.Lat(), Lon: l.Lon()}
}

type NewDelivery struct {
	SenderID      string   `json:"sender_id" validate:"required,uuid"`
	Pickup        Location `json:"pickup" validate:"required"`
	Dropoff       Location `json:"dropoff" validate:"required"`
	PaymentMethod string   `json:"payment_method" validate:"required,oneof=CASH_P2P PREPAID_WALLET"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type OTPRequest struct {
	OTP string `json:"otp" validate:"required"`
}

type CourierRequest struct {
	CourierID string `json:"courier_id" validate:"required,uuid"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type ReleaseRequest struct {
	CourierID string `json:"courier_id" validate:"required,uuid"`
	Reason    string `json:"reason" validate:"max=500"`
}

type PresenceRequest struct {
	Online   *bool     `json:"online" validate:"required"`
	Location *Location `json:"location"`
}

type NewAccount struct {
	ID          string          `json:"id" validate:"omitempty,uuid"`
	Role        string          `json:"role" validate:"required,oneof=Courier Business"`
	DebtCeiling decimal.Decimal `json:"debt_ceiling"`
	Verified    bool            `json:"verified"`
	Rating      float64         `json:"rating" validate:"gte=0,lte=5"`
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type Delivery struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	SenderID       string     `json:"sender_id"`
	CourierID      *string    `json:"courier_id"`
	Pickup         Location   `json:"pickup"`
	Dropoff        Location   `json:"dropoff"`
	PaymentMethod  string     `json:"payment_method"`
	DistanceKm     float64    `json:"distance_km"`
	TotalPrice     string     `json:"total_price"`
	PlatformFee    string     `json:"platform_fee"`
	CourierEarning string     `json:"courier_earning"`
	PickupOTP      string     `json:"pickup_otp"`
	DropoffOTP     string     `json:"dropoff_otp"`
	DispatchRound  int        `json:"dispatch_round"`
	CancelReason   string     `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	AssignedAt     *time.Time `json:"assigned_at,omitempty"`
	PickedUpAt     *time.Time `json:"picked_up_at,omitempty"`
	InTransitAt    *time.Time `json:"in_transit_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
}

func deliveryFrom(d queries.GetDeliveryQueryResponse) Delivery {
	return Delivery{
		ID:             d.ID.String(),
		Status:         d.Status,
		SenderID:       d.SenderID.String(),
		CourierID:      optionalID(d.CourierID),
		Pickup:         locationFrom(d.Pickup),
		Dropoff:        locationFrom(d.Dropoff),
		PaymentMethod:  d.PaymentMethod,
		DistanceKm:     d.DistanceKm,
		TotalPrice:     money(d.TotalPrice),
		PlatformFee:    money(d.PlatformFee),
		CourierEarning: money(d.CourierEarning),
		PickupOTP:      d.PickupOTP,
		DropoffOTP:     d.DropoffOTP,
		DispatchRound:  d.DispatchRound,
		CancelReason:   d.CancelReason,
		CreatedAt:      d.CreatedAt,
		AssignedAt:     d.AssignedAt,
		PickedUpAt:     d.PickedUpAt,
		InTransitAt:    d.InTransitAt,
		CompletedAt:    d.CompletedAt,
		CancelledAt:    d.CancelledAt,
	}
}

type PendingOffer struct {
	OfferID        string    `json:"offer_id"`
	DeliveryID     string    `json:"delivery_id"`
	Pickup         Location  `json:"pickup"`
	Dropoff        Location  `json:"dropoff"`
	DistanceKm     float64   `json:"distance_km"`
	CourierEarning string    `json:"courier_earning"`
	PaymentMethod  string    `json:"payment_method"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func pendingOfferFrom(o queries.GetPendingOffersQueryResponse) PendingOffer {
	return PendingOffer{
		OfferID:        o.OfferID.String(),
		DeliveryID:     o.DeliveryID.String(),
		Pickup:         locationFrom(o.Pickup),
		Dropoff:        locationFrom(o.Dropoff),
		DistanceKm:     o.DistanceKm,
		CourierEarning: money(o.CourierEarning),
		PaymentMethod:  o.PaymentMethod,
		ExpiresAt:      o.ExpiresAt,
	}
}

type Balance struct {
	AccountID               string `json:"account_id"`
	Role                    string `json:"role"`
	Balance                 string `json:"balance"`
	DebtCeiling             string `json:"debt_ceiling"`
	IsEligibleForAssignment bool   `json:"is_eligible_for_assignment"`
}

func balanceFrom(b queries.GetBalanceQueryResponse) Balance {
	return Balance{
		AccountID:               b.AccountID.String(),
		Role:                    b.Role,
		Balance:                 money(b.Balance),
		DebtCeiling:             money(b.DebtCeiling),
		IsEligibleForAssignment: b.IsEligibleForAssignment,
	}
}

type LedgerEntry struct {
	ID               string    `json:"id"`
	Amount           string    `json:"amount"`
	Reason           string    `json:"reason"`
	DeliveryID       *string   `json:"delivery_id"`
	ResultingBalance string    `json:"resulting_balance"`
	CreatedAt        time.Time `json:"created_at"`
}

func ledgerEntryFrom(e *account.LedgerEntry) LedgerEntry {
	return LedgerEntry{
		ID:               e.ID().String(),
		Amount:           money(e.Amount()),
		Reason:           e.Reason().String(),
		DeliveryID:       optionalID(e.DeliveryID()),
		ResultingBalance: money(e.ResultingBalance()),
		CreatedAt:        e.CreatedAt(),
	}
}

type Statement struct {
	AccountID string        `json:"account_id"`
	Balance   string        `json:"balance"`
	LedgerSum string        `json:"ledger_sum"`
	Drift     string        `json:"drift"`
	Entries   []LedgerEntry `json:"entries"`
}

func statementFrom(s ledger.Statement) Statement {
	entries := make([]LedgerEntry, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = ledgerEntryFrom(e)
	}
	return Statement{
		AccountID: s.AccountID.String(),
		Balance:   money(s.Balance),
		LedgerSum: money(s.LedgerSum),
		Drift:     money(s.Drift),
		Entries:   entries,
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalID(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
