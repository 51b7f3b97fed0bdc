// Package domain holds the in-memory cart a register mutates between
// checkouts. A cart is owned by exactly one register session and is not
// safe for concurrent use; sessions serialize access per register.
package domain

import (
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/kasira/pkg/money"
)

var (
	ErrLineNotFound    = errors.New("line_not_found")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidDiscount = errors.New("invalid_discount")
)

// Line is a single product position. ProductName and UnitPrice are
// snapshots taken at add-time; they are never re-fetched on recompute.
type Line struct {
	ProductID       snowflake.ID `json:"product_id"`
	ProductName     string       `json:"product_name"`
	Quantity        int64        `json:"quantity"`
	UnitPrice       money.Money  `json:"unit_price"`
	DiscountPercent float64      `json:"discount_percent"`
	Subtotal        money.Money  `json:"subtotal"`
}

func (l *Line) recompute() {
	gross := l.UnitPrice.MulInt(l.Quantity)
	l.Subtotal = gross.Sub(gross.MulPercent(l.DiscountPercent))
}

// Cart is an ordered sequence of lines keyed by product ID. Re-adding a
// product merges into its existing line and keeps the original position.
type Cart struct {
	lines []*Line
}

func New() *Cart {
	return &Cart{}
}

// AddLine appends a line, or merges quantity into an existing line for
// the same product. The returned line reflects the recomputed subtotal.
func (c *Cart) AddLine(productID snowflake.ID, name string, unitPrice money.Money, quantity int64, discountPercent float64) (Line, error) {
	if quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return Line{}, money.ErrInvalidAmount
	}
	if discountPercent < 0 || discountPercent > 100 {
		return Line{}, ErrInvalidDiscount
	}

	if existing := c.find(productID); existing != nil {
		existing.Quantity += quantity
		if discountPercent > 0 {
			existing.DiscountPercent = discountPercent
		}
		existing.recompute()
		return *existing, nil
	}

	line := &Line{
		ProductID:       productID,
		ProductName:     name,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: discountPercent,
	}
	line.recompute()
	c.lines = append(c.lines, line)
	return *line, nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity of
// zero or less removes the line; a line never survives at quantity zero.
func (c *Cart) UpdateQuantity(productID snowflake.ID, quantity int64) (Line, error) {
	line := c.find(productID)
	if line == nil {
		return Line{}, ErrLineNotFound
	}
	if quantity <= 0 {
		c.remove(productID)
		return Line{}, nil
	}
	line.Quantity = quantity
	line.recompute()
	return *line, nil
}

// RemoveLine deletes the line for productID. Removing an absent product
// is a no-op.
func (c *Cart) RemoveLine(productID snowflake.ID) {
	c.remove(productID)
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns the lines in insertion order. The slice holds copies so
// callers cannot bypass the mutation API.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, *l)
	}
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) find(productID snowflake.ID) *Line {
	for _, l := range c.lines {
		if l.ProductID == productID {
			return l
		}
	}
	return nil
}

func (c *Cart) remove(productID snowflake.ID) {
	for i, l := range c.lines {
		if l.ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}
