// Package money provides standardized formatting for the single currency the
// bot operates in. All monetary amounts are decimal.Decimal to avoid
// floating-point errors.
package money

import (
	"github.com/shopspring/decimal"
)

// Symbol is the ruble sign used in user-facing messages.
const Symbol = "₽"

// DecimalPlaces is the number of fractional digits shown for prices.
const DecimalPlaces = 2

// Format renders an amount as "1234.56 ₽".
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(DecimalPlaces) + " " + Symbol
}

// FormatSigned renders an amount with an explicit sign, e.g. "+20.00 ₽" or
// "-60.00 ₽". Zero is rendered as "+0.00 ₽".
func FormatSigned(amount decimal.Decimal) string {
	s := amount.StringFixed(DecimalPlaces)
	if !amount.IsNegative() {
		s = "+" + s
	}
	return s + " " + Symbol
}

// FromMinorUnits converts an integer amount of kopecks into rubles.
func FromMinorUnits(kopecks int64) decimal.Decimal {
	return decimal.NewFromInt(kopecks).Div(decimal.NewFromInt(100))
}
