// Package money parses the free-text amounts captured by the form and
// formats rouble values for reports.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Parse reads an operator-entered amount: spaces are thousand separators, a
// comma is an accepted decimal mark ("1 200 000", "120,5"). Unparsable or
// empty input yields zero.
func Parse(value string) decimal.Decimal {
	clean := strings.ReplaceAll(value, " ", "")
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, ",", ".")
	if clean == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Format renders an amount the way the operator is used to seeing it:
// "1 700 ₽", rounded to whole roubles with space-grouped thousands.
func Format(amount decimal.Decimal) string {
	s := amount.Round(0).String()

	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	out := strings.Join(groups, " ")
	if neg {
		out = "-" + out
	}
	return out + " ₽"
}

// Savings computes the client's net benefit for a report:
// objective cost − (price − seller discount) − investment cost.
// It counts only when both price and objective cost are present and non-zero
// and the result is strictly positive.
func Savings(price, objectiveCost, sellerDiscount, investmentCost string) (decimal.Decimal, bool) {
	p := Parse(price)
	oc := Parse(objectiveCost)
	if p.IsZero() || oc.IsZero() {
		return decimal.Zero, false
	}
	s := oc.Sub(p.Sub(Parse(sellerDiscount))).Sub(Parse(investmentCost))
	if s.Sign() <= 0 {
		return decimal.Zero, false
	}
	return s, true
}
