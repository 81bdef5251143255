package ports

import (
	"dispatch/internal/core/domain/model/account"

	"github.com/shopspring/decimal"
)

// Metrics records dispatch and settlement counters.
type Metrics interface {
	OfferCreated(radiusTier int)
	OfferResolved(outcome string)
	NoCourierAvailable()
	DeliveryTransition(status string)
	LedgerPosted(reason account.Reason, amount decimal.Decimal)
}
