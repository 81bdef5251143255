package services

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PricingConfig holds the fare parameters, all in XAF.
type PricingConfig struct {
	BaseFare    decimal.Decimal
	PerKmRate   decimal.Decimal
	MinimumFare decimal.Decimal
	FeeRatio    decimal.Decimal
}

// DefaultPricingConfig returns the tariff used when nothing is configured.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		BaseFare:    decimal.NewFromInt(500),
		PerKmRate:   decimal.NewFromInt(150),
		MinimumFare: decimal.NewFromInt(1000),
		FeeRatio:    decimal.RequireFromString("0.2"),
	}
}

// Validate rejects negative amounts and a fee ratio outside [0,1].
func (c PricingConfig) Validate() error {
	var errList []error
	for name, v := range map[string]decimal.Decimal{
		"base_fare":    c.BaseFare,
		"per_km_rate":  c.PerKmRate,
		"minimum_fare": c.MinimumFare,
	} {
		if v.IsNegative() {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%s is negative", v)))
		}
	}
	if c.FeeRatio.IsNegative() || c.FeeRatio.GreaterThan(decimal.NewFromInt(1)) {
		errList = append(errList, errs.NewValueIsOutOfRangeError("fee_ratio", c.FeeRatio, 0, 1))
	}
	return errors.Join(errList...)
}

// PricingCalculator turns a route distance into a frozen fare.
//
// Formula:
//
//	raw     = base + d * perKm
//	rounded = ceil(raw / 100) * 100
//	total   = max(rounded, minimumFare)
//	fee     = round(total * feeRatio)   // whole XAF
//	earning = total - fee
//
// Example: d=5.47, base=500, perKm=150, feeRatio=0.2 gives total 1400, fee 280, earning 1120.
type PricingCalculator struct {
	cfg PricingConfig
}

// NewPricingCalculator validates cfg.
func NewPricingCalculator(cfg PricingConfig) (*PricingCalculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PricingCalculator{cfg: cfg}, nil
}

// Quote prices a trip of distanceKm. Negative, NaN and infinite distances are rejected.
func (p *PricingCalculator) Quote(distanceKm float64) (delivery.Pricing, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm < 0 {
		return delivery.Pricing{}, errs.NewValueIsInvalidErrorWithCause(
			"distance_km",
			fmt.Errorf("%v is not a finite non-negative distance", distanceKm),
		)
	}

	raw := p.cfg.BaseFare.Add(decimal.NewFromFloat(distanceKm).Mul(p.cfg.PerKmRate))
	rounded := raw.Div(hundred).Ceil().Mul(hundred)
	total := decimal.Max(rounded, p.cfg.MinimumFare)
	fee := total.Mul(p.cfg.FeeRatio).Round(0)
	earning := total.Sub(fee)

	return delivery.NewPricing(distanceKm, total, fee, earning)
}
