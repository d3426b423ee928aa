// Package core holds the domain value types shared by every other package:
// calendar dates, money amounts, transaction records and categories.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount held in integer cents. All arithmetic in the
// engine happens on cents; conversion to decimal form happens only at the
// serialization boundary, so summation can never drift.
type Money struct {
	Cents int64
}

var ErrInvalidAmount = errors.New("invalid amount")

var centsPerUnit = decimal.NewFromInt(100)

// ParseMoney converts a decimal string ("12.34", also accepting a decimal
// comma) into cents with half-up rounding on the third decimal place.
// Negative amounts are rejected: transaction amounts are non-negative.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return Money{}, fmt.Errorf("%w: negative value %q", ErrInvalidAmount, s)
	}
	cents := d.Mul(centsPerUnit).Round(0)
	if cents.BigInt().BitLen() > 62 {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other. The result may be negative (balances).
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Decimal returns the amount as an exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two decimals ("3750.00").
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON serializes the amount as a decimal string so that exact cents
// survive transport; binary floating point is never involved.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both a decimal string and a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Validate returns ErrInvalidAmount for negative amounts.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
