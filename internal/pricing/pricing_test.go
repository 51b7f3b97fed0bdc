package pricing

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/smallbiznis/kasira/internal/cart/domain"
	"github.com/smallbiznis/kasira/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLines(t *testing.T) []cartdomain.Line {
	t.Helper()
	c := cartdomain.New()
	_, err := c.AddLine(1, "beans 1kg", money.FromCents(1000), 3, 0)
	require.NoError(t, err)
	_, err = c.AddLine(2, "filters", money.FromCents(500), 2, 10)
	require.NoError(t, err)
	return c.Lines()
}

func TestPriceReferenceScenario(t *testing.T) {
	// 3 x 10.00 plus 2 x 5.00 at 10% line discount, 5% cart discount, 10% tax.
	lines := buildLines(t)
	s := Price(lines, 5, 0.10)

	assert.Equal(t, "39.00", s.Subtotal.String())
	assert.Equal(t, "1.95", s.DiscountAmount.String())
	assert.Equal(t, "37.05", s.TaxableAmount.String())
	assert.Equal(t, "3.71", s.TaxAmount.String()) // 3.705 rounded half-up
	assert.Equal(t, "40.76", s.Total.String())
}

func TestPriceIdentityAtZero(t *testing.T) {
	lines := buildLines(t)
	s := Price(lines, 0, 0)
	assert.True(t, s.Total.Equal(s.Subtotal))
	assert.True(t, s.DiscountAmount.IsZero())
	assert.True(t, s.TaxAmount.IsZero())
}

func TestPriceSubtotalIsSumOfLines(t *testing.T) {
	lines := buildLines(t)
	want := money.Zero
	for _, l := range lines {
		want = want.Add(l.Subtotal)
	}
	s := Price(lines, 7.5, 0.08)
	assert.True(t, s.Subtotal.Equal(want.Round()))
}

func TestPriceEmptyCart(t *testing.T) {
	s := Price(nil, 5, 0.10)
	assert.True(t, s.Subtotal.IsZero())
	assert.True(t, s.Total.IsZero())
}

func TestDiscountsChainSuccessively(t *testing.T) {
	// 100.00 at 10% line discount then 10% cart discount: 100 * 0.9 * 0.9 = 81,
	// not the additive 80.
	c := cartdomain.New()
	_, err := c.AddLine(1, "p", money.FromCents(10000), 1, 10)
	require.NoError(t, err)

	s := Price(c.Lines(), 10, 0)
	assert.Equal(t, "81.00", s.TaxableAmount.String())
}

func TestProrateReconcilesExactly(t *testing.T) {
	lines := buildLines(t)
	s := Price(lines, 5, 0.10)
	shares := Prorate(lines, s)
	require.Len(t, shares, len(lines))

	discountSum, taxSum := money.Zero, money.Zero
	for _, share := range shares {
		discountSum = discountSum.Add(share.Discount)
		taxSum = taxSum.Add(share.Tax)
	}
	assert.True(t, discountSum.Equal(s.DiscountAmount), "discount shares must sum to %s, got %s", s.DiscountAmount, discountSum)
	assert.True(t, taxSum.Equal(s.TaxAmount), "tax shares must sum to %s, got %s", s.TaxAmount, taxSum)
}

func TestProrateUnevenSplit(t *testing.T) {
	// 3 equal lines and a 1.00 discount: 34 + 33 + 33, never 33*3.
	c := cartdomain.New()
	for id := int64(1); id <= 3; id++ {
		_, err := c.AddLine(snowflake.ID(id), "p", money.FromCents(1000), 1, 0)
		require.NoError(t, err)
	}
	lines := c.Lines()
	s := Summary{
		Subtotal:       money.FromCents(3000),
		DiscountAmount: money.FromCents(100),
		TaxableAmount:  money.FromCents(2900),
		TaxAmount:      money.FromCents(0),
		Total:          money.FromCents(2900),
	}

	shares := Prorate(lines, s)
	var sum int64
	for _, share := range shares {
		sum += share.Discount.Cents()
	}
	assert.Equal(t, int64(100), sum)
	assert.Equal(t, int64(34), shares[0].Discount.Cents())
}

func TestProrateEmpty(t *testing.T) {
	assert.Empty(t, Prorate(nil, Summary{}))
}
