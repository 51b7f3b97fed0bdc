// Package money provides the fixed-precision amount type used by all
// pricing arithmetic. Amounts keep full decimal precision through
// intermediate computations and are rounded half-up to two decimal
// places only when persisted or displayed.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid_amount")

// Money is an immutable decimal amount. The zero value is zero currency units.
type Money struct {
	d decimal.Decimal
}

var Zero = Money{}

// Parse builds an amount from a decimal string such as "10.00" or "-3.5".
func Parse(value string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{d: d}, nil
}

// ParseNonNegative is Parse restricted to amounts where a negative value
// makes no sense (unit prices, tender).
func ParseNonNegative(value string) (Money, error) {
	m, err := Parse(value)
	if err != nil {
		return Money{}, err
	}
	if m.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// FromCents builds an amount from integer minor units (2-decimal scale).
func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -2)}
}

func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

// MulInt scales the amount by an integer quantity.
func (m Money) MulInt(n int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(n))}
}

// MulPercent returns amount * pct/100 without rounding.
func (m Money) MulPercent(pct float64) Money {
	return Money{d: m.d.Mul(decimal.NewFromFloat(pct)).Div(decimal.NewFromInt(100))}
}

// MulRate returns amount * rate (a fraction such as 0.10) without rounding.
func (m Money) MulRate(rate float64) Money {
	return Money{d: m.d.Mul(decimal.NewFromFloat(rate))}
}

func (m Money) Cmp(o Money) int       { return m.d.Cmp(o.d) }
func (m Money) Equal(o Money) bool    { return m.d.Equal(o.d) }
func (m Money) LessThan(o Money) bool { return m.d.LessThan(o.d) }
func (m Money) IsZero() bool          { return m.d.IsZero() }
func (m Money) IsNegative() bool      { return m.d.IsNegative() }

// Round applies the persistence/display rounding: half-up to 2 decimals.
func (m Money) Round() Money {
	return Money{d: m.d.Round(2)}
}

// Cents returns the amount as integer minor units, rounding half-up.
func (m Money) Cents() int64 {
	return m.d.Round(2).Shift(2).IntPart()
}

// Decimal exposes the unrounded value for further chained computation.
func (m Money) Decimal() decimal.Decimal { return m.d }

// String renders the rounded amount with exactly two decimals.
func (m Money) String() string {
	return m.d.Round(2).StringFixed(2)
}

func Max(a, b Money) Money {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// MarshalJSON renders the amount as a quoted 2-decimal string, never a float.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
