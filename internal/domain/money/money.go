// Package money centralizes fixed-point monetary arithmetic. All amounts in
// the system are decimal values; float accumulation is never used for totals.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var Zero = decimal.Zero

// Parse parses a decimal amount from its string form.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// MustParse is Parse for literals in tests and defaults.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Sum adds the given amounts without losing precision.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Format renders an amount with two decimal places for display.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
