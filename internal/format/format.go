// Package format renders money, percentages and dates the way the dashboard shows them.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// NotApplicable is shown wherever a ratio has no defined value
const NotApplicable = "N/A"

// RupeeSymbol prefixes every currency amount
const RupeeSymbol = "₹"

// Number groups an amount using the Indian convention (1,23,45,678).
// Amounts are rounded to two places and trailing zero decimals are dropped.
func Number(amount float64) string {
	if !finite(amount) {
		return NotApplicable
	}
	d := decimal.NewFromFloat(amount).Round(2)
	neg := d.IsNegative()
	s := d.Abs().String()

	intPart, fracPart, _ := strings.Cut(s, ".")
	grouped := groupIndian(intPart)
	if fracPart != "" {
		grouped += "." + fracPart
	}
	if neg {
		return "-" + grouped
	}
	return grouped
}

// INR formats an amount as rupees, e.g. ₹1,23,456
func INR(amount float64) string {
	if !finite(amount) {
		return NotApplicable
	}
	n := Number(amount)
	if strings.HasPrefix(n, "-") {
		return "-" + RupeeSymbol + n[1:]
	}
	return RupeeSymbol + n
}

// Percent formats a percentage with one decimal place, e.g. 34.7%
func Percent(v float64) string {
	if !finite(v) {
		return NotApplicable
	}
	return Fixed(v, 1) + "%"
}

// PercentOrNA formats a guarded percentage
func PercentOrNA(v float64, ok bool) string {
	if !ok {
		return NotApplicable
	}
	return Percent(v)
}

// Fixed rounds half away from zero and prints exactly places decimals.
// Infinities and NaN render as N/A.
func Fixed(v float64, places int32) string {
	if !finite(v) {
		return NotApplicable
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// RoundTo rounds an amount to the nearest multiple of step
func RoundTo(amount, step float64) float64 {
	if step <= 0 || !finite(amount) || !finite(step) {
		return amount
	}
	s := decimal.NewFromFloat(step)
	f, _ := decimal.NewFromFloat(amount).Div(s).Round(0).Mul(s).Float64()
	return f
}

// groupIndian inserts separators: the last three digits, then pairs
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	parts = append(parts, tail)
	return strings.Join(parts, ",")
}

// finite reports whether decimal can represent v
func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
