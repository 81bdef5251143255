package delivery

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// PaymentMethod decides how a delivery is settled.
type PaymentMethod int

const (
	// PaymentUnknown is the zero value and never valid.
	PaymentUnknown PaymentMethod = iota
	// PaymentCashP2P means the recipient pays the courier in cash; the courier owes the platform fee.
	PaymentCashP2P
	// PaymentPrepaidWallet means the sender's wallet is escrowed at creation.
	PaymentPrepaidWallet
)

func getPaymentMethodStrings() map[PaymentMethod]string {
	return map[PaymentMethod]string{
		PaymentUnknown:       "Unknown",
		PaymentCashP2P:       "CASH_P2P",
		PaymentPrepaidWallet: "PREPAID_WALLET",
	}
}

// ParsePaymentMethod converts the wire form (CASH_P2P, PREPAID_WALLET) into a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for m, str := range getPaymentMethodStrings() {
		if m != PaymentUnknown && str == s {
			return m, nil
		}
	}
	return PaymentUnknown, errs.NewValueIsInvalidErrorWithCause(
		"payment_method",
		fmt.Errorf("%q is not a valid payment method", s),
	)
}

func (m PaymentMethod) Validate() error {
	if m != PaymentCashP2P && m != PaymentPrepaidWallet {
		return errs.NewValueIsInvalidErrorWithCause("payment_method", fmt.Errorf("%d is not a valid payment method", m))
	}
	return nil
}

func (m PaymentMethod) String() string {
	if str, ok := getPaymentMethodStrings()[m]; ok {
		return str
	}
	return "Unknown"
}
