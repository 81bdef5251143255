package services

import (
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Direction says whether a posting adds to or takes from a wallet.
type Direction int

const (
	Credit Direction = iota + 1
	Debit
)

func (d Direction) String() string {
	switch d {
	case Credit:
		return "credit"
	case Debit:
		return "debit"
	default:
		return "unknown"
	}
}

// Posting is one wallet movement the ledger must apply together with a delivery transition.
type Posting struct {
	AccountID  kernel.UUID
	Direction  Direction
	Amount     decimal.Decimal
	Reason     account.Reason
	DeliveryID kernel.UUID
}

// SettlementEngine derives ledger postings from delivery transitions.
//
// Rules:
//   - CASH_P2P: at completion the courier owes the platform fee (cash_commission)
//   - PREPAID_WALLET: at creation the sender is debited the total (prepay_escrow);
//     at completion the courier is credited the earning (delivery_earning);
//     on cancellation the sender gets the total back (prepay_refund)
//
// Zero amounts produce no posting.
type SettlementEngine struct{}

func NewSettlementEngine() SettlementEngine {
	return SettlementEngine{}
}

// OnCreated returns the escrow posting for a prepaid delivery.
func (SettlementEngine) OnCreated(d *delivery.Delivery) ([]Posting, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if !d.IsPrepaid() {
		return nil, nil
	}
	return nonZero(Posting{
		AccountID:  d.SenderID(),
		Direction:  Debit,
		Amount:     d.Pricing().TotalPrice(),
		Reason:     account.ReasonPrepayEscrow,
		DeliveryID: d.ID(),
	}), nil
}

// OnCompleted returns the postings due when d has just been completed.
func (SettlementEngine) OnCompleted(d *delivery.Delivery) ([]Posting, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if d.Status() != delivery.Completed {
		return nil, errs.NewInvalidStateError("delivery", d.Status().String(), "settle")
	}
	courierID := d.CourierID()
	if courierID == nil {
		return nil, errs.NewValueIsRequiredError("courier_id")
	}

	if d.IsPrepaid() {
		return nonZero(Posting{
			AccountID:  *courierID,
			Direction:  Credit,
			Amount:     d.Pricing().CourierEarning(),
			Reason:     account.ReasonDeliveryEarning,
			DeliveryID: d.ID(),
		}), nil
	}
	return nonZero(Posting{
		AccountID:  *courierID,
		Direction:  Debit,
		Amount:     d.Pricing().PlatformFee(),
		Reason:     account.ReasonCashCommission,
		DeliveryID: d.ID(),
	}), nil
}

// OnCancelled returns the refund posting when a prepaid delivery is cancelled.
func (SettlementEngine) OnCancelled(d *delivery.Delivery) ([]Posting, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if d.Status() != delivery.Cancelled {
		return nil, errs.NewInvalidStateError("delivery", d.Status().String(), "refund")
	}
	if !d.IsPrepaid() {
		return nil, nil
	}
	return nonZero(Posting{
		AccountID:  d.SenderID(),
		Direction:  Credit,
		Amount:     d.Pricing().TotalPrice(),
		Reason:     account.ReasonPrepayRefund,
		DeliveryID: d.ID(),
	}), nil
}

func nonZero(p Posting) []Posting {
	if !p.Amount.IsPositive() {
		return nil
	}
	return []Posting{p}
}
