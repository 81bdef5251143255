package account

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Reason is the code recorded on every ledger entry.
type Reason string

const (
	// ReasonCashCommission is the platform fee a courier owes after collecting cash in person.
	ReasonCashCommission Reason = "cash_commission"
	// ReasonPrepayEscrow is the full fare taken from a business wallet when a prepaid delivery is created.
	ReasonPrepayEscrow Reason = "prepay_escrow"
	// ReasonDeliveryEarning is the courier's share of a prepaid fare, paid at completion.
	ReasonDeliveryEarning Reason = "delivery_earning"
	// ReasonPrepayRefund returns the escrowed fare when a prepaid delivery is cancelled.
	ReasonPrepayRefund Reason = "prepay_refund"
	// ReasonManualAdjustment covers operator top-ups and corrections.
	ReasonManualAdjustment Reason = "manual_adjustment"
)

// Validate rejects codes outside the known set.
func (r Reason) Validate() error {
	switch r {
	case ReasonCashCommission, ReasonPrepayEscrow, ReasonDeliveryEarning, ReasonPrepayRefund, ReasonManualAdjustment:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("reason", fmt.Errorf("%q is not a valid ledger reason", string(r)))
	}
}

func (r Reason) String() string {
	return string(r)
}
