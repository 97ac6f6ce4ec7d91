// Package money provides the exact-cent currency type used by the ledger.
//
// All arithmetic happens on integer cents. Decimal strings and floats are
// only accepted at the boundary and are rounded half away from zero to the
// nearest cent with shopspring/decimal, never truncated.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is a currency amount in hundredths of the unit.
type Cents int64

// Zero is the zero amount.
const Zero Cents = 0

var (
	// ErrInvalidAmount is returned for unparsable or non-finite amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrOverflow is returned when an amount does not fit in int64 cents.
	ErrOverflow = errors.New("amount out of range")
)

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// FromDecimal rounds d to the nearest cent.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	scaled := d.Round(2).Mul(hundred)
	if scaled.GreaterThan(maxCents) || scaled.LessThan(minCents) {
		return 0, fmt.Errorf("%w: %s", ErrOverflow, d.String())
	}
	return Cents(scaled.IntPart()), nil
}

// FromFloat rounds f to the nearest cent. NaN and infinities are rejected.
func FromFloat(f float64) (Cents, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, f)
	}
	return FromDecimal(decimal.NewFromFloat(f))
}

// Parse reads a user-entered amount such as "12.34" or "12,34". A comma is
// a decimal mark only when it is the sole separator, so "1,234" and
// "1,234.50" are rejected rather than guessed at. Amounts with more than two
// decimal places are rejected, not rounded.
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	normalized := s
	if strings.Contains(s, ",") {
		if strings.Count(s, ",") > 1 || strings.Contains(s, ".") {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		normalized = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.Equal(d.Truncate(2)) {
		return 0, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Cents {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Decimal returns the amount as an exact decimal with two places.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Float64 returns the amount in units for display. Zero is always +0.
func (c Cents) Float64() float64 {
	if c == 0 {
		return 0
	}
	return float64(c) / 100
}

// String formats the amount with exactly two decimals, e.g. "-25.00".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Abs returns the absolute value.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// IsPositive reports whether c > 0.
func (c Cents) IsPositive() bool { return c > 0 }

// IsNegative reports whether c < 0.
func (c Cents) IsNegative() bool { return c < 0 }

// Min returns the smaller of a and b.
func Min(a, b Cents) Cents {
	if a < b {
		return a
	}
	return b
}

// Sum adds the amounts.
func Sum(amounts []Cents) Cents {
	var total Cents
	for _, a := range amounts {
		total += a
	}
	return total
}

// MarshalJSON encodes the amount as a fixed two-decimal string.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string ("12.34") or a number (12.34).
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*c = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
