package kernel

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits kept for XAF amounts.
const MoneyScale int32 = 2

// RoundMoney rounds an amount half away from zero to MoneyScale digits.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyScale)
}

// MoneyFromInt returns a whole-unit XAF amount.
func MoneyFromInt(units int64) decimal.Decimal {
	return decimal.NewFromInt(units)
}
