// Package pricing computes the discount/tax chain for a set of cart
// lines. The engine is a pure function of its inputs: tax rate and cart
// discount arrive as parameters, never as ambient state, and nothing is
// cached between calls.
package pricing

import (
	cartdomain "github.com/smallbiznis/kasira/internal/cart/domain"
	"github.com/smallbiznis/kasira/pkg/money"
)

// Summary is the priced view of a cart. Every field is rounded to two
// decimals; it is derived state and never persisted as-is.
type Summary struct {
	Subtotal       money.Money `json:"subtotal"`
	DiscountAmount money.Money `json:"discount_amount"`
	TaxableAmount  money.Money `json:"taxable_amount"`
	TaxAmount      money.Money `json:"tax_amount"`
	Total          money.Money `json:"total"`
}

// Price runs the pricing chain:
//
//	subtotal       = Σ line subtotals (line discounts already applied)
//	discountAmount = subtotal * cartDiscountPercent/100
//	taxableAmount  = subtotal - discountAmount
//	taxAmount      = taxableAmount * taxRate
//	total          = taxableAmount + taxAmount
//
// The cart discount is applied to the post-line-discount subtotal, so
// line and cart percentages chain as successive reductions rather than
// adding up. Intermediates keep full precision; rounding happens once,
// per field, on the returned summary. An empty cart prices to all zeros.
func Price(lines []cartdomain.Line, cartDiscountPercent, taxRate float64) Summary {
	subtotal := money.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Subtotal)
	}

	discount := subtotal.MulPercent(cartDiscountPercent)
	taxable := subtotal.Sub(discount)
	tax := taxable.MulRate(taxRate)
	total := taxable.Add(tax)

	return Summary{
		Subtotal:       subtotal.Round(),
		DiscountAmount: discount.Round(),
		TaxableAmount:  taxable.Round(),
		TaxAmount:      tax.Round(),
		Total:          total.Round(),
	}
}

// LineShare is one line's slice of the cart-level discount and tax.
type LineShare struct {
	Discount money.Money
	Tax      money.Money
}

// Prorate splits the summary's discount and tax across lines in
// proportion to each line's subtotal. Allocation is largest-remainder
// over minor units, so the per-line shares always sum exactly to the
// summary amounts.
func Prorate(lines []cartdomain.Line, summary Summary) []LineShare {
	shares := make([]LineShare, len(lines))
	if len(lines) == 0 {
		return shares
	}

	subtotalCents := summary.Subtotal.Cents()
	if subtotalCents == 0 {
		return shares
	}

	weights := make([]int64, len(lines))
	for i, line := range lines {
		weights[i] = line.Subtotal.Cents()
	}

	discounts := allocate(summary.DiscountAmount.Cents(), weights, subtotalCents)
	taxes := allocate(summary.TaxAmount.Cents(), weights, subtotalCents)
	for i := range shares {
		shares[i] = LineShare{
			Discount: money.FromCents(discounts[i]),
			Tax:      money.FromCents(taxes[i]),
		}
	}
	return shares
}

// allocate distributes amount over weights, handing leftover cents to
// the largest fractional remainders first (ties go to earlier lines).
func allocate(amount int64, weights []int64, totalWeight int64) []int64 {
	out := make([]int64, len(weights))
	if amount == 0 || totalWeight == 0 {
		return out
	}

	var assigned int64
	remainders := make([]int64, len(weights))
	for i, w := range weights {
		raw := amount * w
		out[i] = raw / totalWeight
		remainders[i] = raw % totalWeight
		assigned += out[i]
	}

	for leftover := amount - assigned; leftover > 0; leftover-- {
		best := -1
		for i, r := range remainders {
			if best == -1 || r > remainders[best] {
				best = i
			}
		}
		out[best]++
		remainders[best] = -1
	}
	return out
}
