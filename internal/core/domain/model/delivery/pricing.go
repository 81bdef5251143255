package delivery

import (
	"fmt"
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Pricing is the fare frozen on a delivery at creation.
// PlatformFee + CourierEarning == TotalPrice holds for every constructed value.
type Pricing struct {
	distanceKm     float64
	totalPrice     decimal.Decimal
	platformFee    decimal.Decimal
	courierEarning decimal.Decimal
}

// NewPricing validates the split of total into fee and earning.
func NewPricing(distanceKm float64, total, fee, earning decimal.Decimal) (Pricing, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm < 0 {
		return Pricing{}, errs.NewValueIsInvalidErrorWithCause("distance_km", fmt.Errorf("%v is not a finite non-negative distance", distanceKm))
	}
	if total.IsNegative() || fee.IsNegative() || earning.IsNegative() {
		return Pricing{}, errs.NewValueIsInvalidErrorWithCause("pricing", fmt.Errorf("negative amount in %s/%s/%s", total, fee, earning))
	}
	total, fee, earning = kernel.RoundMoney(total), kernel.RoundMoney(fee), kernel.RoundMoney(earning)
	if !fee.Add(earning).Equal(total) {
		return Pricing{}, errs.NewValueIsInvalidErrorWithCause(
			"pricing",
			fmt.Errorf("fee %s + earning %s != total %s", fee, earning, total),
		)
	}

	return Pricing{
		distanceKm:     distanceKm,
		totalPrice:     total,
		platformFee:    fee,
		courierEarning: earning,
	}, nil
}

func (p Pricing) DistanceKm() float64 { return p.distanceKm }
func (p Pricing) TotalPrice() decimal.Decimal { return p.totalPrice }
func (p Pricing) PlatformFee() decimal.Decimal { return p.platformFee }
func (p Pricing) CourierEarning() decimal.Decimal { return p.courierEarning }
func (p Pricing) IsZero() bool { return p.totalPrice.IsZero() && p.distanceKm == 0 }
