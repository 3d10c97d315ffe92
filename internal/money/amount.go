package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits persisted for amounts and balances.
const Scale = 2

// MaxAmount is the largest value a NUMERIC(18,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999999999.99")

// Number renders a decimal as a bare JSON number using its exact decimal
// representation, so no precision is lost on the way to the client.
type Number decimal.Decimal

// NewNumber wraps d for JSON output.
func NewNumber(d decimal.Decimal) Number {
	return Number(d)
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(n).String()), nil
}

// Format renders d with exactly two fractional digits, e.g. "150.50".
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// ValidateAmount checks that d is positive, no larger than MaxAmount and has
// at most two fractional digits.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("amount must be a positive number")
	}
	if d.GreaterThan(MaxAmount) {
		return fmt.Errorf("amount cannot exceed %s", MaxAmount)
	}
	if !d.Equal(d.Truncate(Scale)) {
		return fmt.Errorf("amount cannot have more than %d decimal places", Scale)
	}
	return nil
}

// InRange reports whether a balance fits the persisted column.
func InRange(balance decimal.Decimal) bool {
	return balance.LessThanOrEqual(MaxAmount)
}
