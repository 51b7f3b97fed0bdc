package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	m, err := Parse("10.00")
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), m.Cents())

	m, err = Parse(" 3.5 ")
	assert.NoError(t, err)
	assert.Equal(t, "3.50", m.String())

	_, err = Parse("ten dollars")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	m, err = Parse("-2.25")
	assert.NoError(t, err)
	assert.True(t, m.IsNegative())
}

func TestParseNonNegative(t *testing.T) {
	_, err := ParseNonNegative("-0.01")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	m, err := ParseNonNegative("0")
	assert.NoError(t, err)
	assert.True(t, m.IsZero())
}

func TestArithmeticKeepsPrecision(t *testing.T) {
	// 37.05 * 0.10 = 3.705: the intermediate must not be rounded away.
	taxable := FromCents(3705)
	tax := taxable.MulRate(0.10)
	assert.Equal(t, "3.705", tax.Decimal().String())

	// Rounding happens only at the boundary, half-up.
	assert.Equal(t, int64(371), tax.Cents())
	assert.Equal(t, "3.71", tax.String())
}

func TestMulPercent(t *testing.T) {
	subtotal := FromCents(3900)
	discount := subtotal.MulPercent(5)
	assert.Equal(t, int64(195), discount.Cents())

	// Fractional percents keep their precision through the chain.
	m := FromCents(1000).MulPercent(12.5)
	assert.Equal(t, "1.25", m.String())
}

func TestRoundHalfUp(t *testing.T) {
	cases := map[string]string{
		"1.005":  "1.01",
		"1.004":  "1.00",
		"2.675":  "2.68",
		"0.0049": "0.00",
	}
	for in, want := range cases {
		m, err := Parse(in)
		assert.NoError(t, err)
		assert.Equal(t, want, m.Round().String(), "input %s", in)
	}
}

func TestCompare(t *testing.T) {
	a := FromCents(4076)
	b := FromCents(4076)
	assert.True(t, a.Equal(b))
	assert.False(t, a.LessThan(b))
	assert.True(t, FromCents(4075).LessThan(a))
	assert.Equal(t, a, Max(a, FromCents(100)))
}

func TestJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(FromCents(4730))
	assert.NoError(t, err)
	assert.Equal(t, `"47.30"`, string(raw))

	var m Money
	assert.NoError(t, json.Unmarshal([]byte(`"12.34"`), &m))
	assert.Equal(t, int64(1234), m.Cents())
}
