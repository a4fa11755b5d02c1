// Package format renders numbers for display. Rounding is done on decimals so
// that values like 0.125 round half away from zero instead of drifting with
// binary float representation.
package format

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent renders a fraction as a percentage, e.g. Percent(0.3, 1) = "30.0%".
func Percent(fraction float64, places int32) string {
	return decimal.NewFromFloat(fraction).Mul(hundred).StringFixed(places) + "%"
}

// SignedPercent is Percent with a leading "+" for strictly positive input.
func SignedPercent(fraction float64, places int32) string {
	s := Percent(fraction, places)
	if fraction > 0 {
		return "+" + s
	}
	return s
}

// Fixed renders v with a fixed number of decimal places.
func Fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// WholeUnits rounds a currency amount to the nearest whole unit.
func WholeUnits(v float64) float64 {
	return Round(v, 0)
}
