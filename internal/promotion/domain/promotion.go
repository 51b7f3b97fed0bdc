// Package domain models the closed set of promotion shapes the engine
// accepts. A promotion is resolved to a single effective cart-discount
// percent before it ever reaches the pricing engine, so pricing itself
// carries no promotion branching.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	cartdomain "github.com/smallbiznis/kasira/internal/cart/domain"
	"github.com/smallbiznis/kasira/pkg/money"
)

var (
	ErrUnknownKind      = errors.New("unknown_promotion_kind")
	ErrInvalidPromotion = errors.New("invalid_promotion")
)

type Kind string

const (
	KindPercentageOff Kind = "percentage_off"
	KindFixedOff      Kind = "fixed_off"
	KindBuyXGetY      Kind = "buy_x_get_y"
	KindMemberOnly    Kind = "member_only"
	KindHappyHour     Kind = "happy_hour"
)

// Promotion is a tagged variant; which fields are meaningful depends on
// Kind. Unknown kinds are rejected, never silently ignored.
type Promotion struct {
	Kind Kind `json:"kind" mapstructure:"kind"`

	// PercentageOff, MemberOnly, HappyHour
	Percent float64 `json:"percent,omitempty" mapstructure:"percent"`

	// FixedOff
	Amount money.Money `json:"amount,omitempty" mapstructure:"-"`

	// BuyXGetY
	ProductID    snowflake.ID `json:"product_id,omitempty" mapstructure:"product_id"`
	BuyQuantity  int64        `json:"buy_quantity,omitempty" mapstructure:"buy_quantity"`
	FreeQuantity int64        `json:"free_quantity,omitempty" mapstructure:"free_quantity"`

	// HappyHour window, [StartHour, EndHour) in register-local hours.
	StartHour int `json:"start_hour,omitempty" mapstructure:"start_hour"`
	EndHour   int `json:"end_hour,omitempty" mapstructure:"end_hour"`
}

func (p Promotion) Validate() error {
	switch p.Kind {
	case KindPercentageOff, KindMemberOnly:
		if p.Percent < 0 || p.Percent > 100 {
			return ErrInvalidPromotion
		}
	case KindFixedOff:
		if p.Amount.IsNegative() {
			return ErrInvalidPromotion
		}
	case KindBuyXGetY:
		if p.ProductID == 0 || p.BuyQuantity < 1 || p.FreeQuantity < 1 {
			return ErrInvalidPromotion
		}
	case KindHappyHour:
		if p.Percent < 0 || p.Percent > 100 {
			return ErrInvalidPromotion
		}
		if p.StartHour < 0 || p.StartHour > 23 || p.EndHour < 0 || p.EndHour > 24 || p.StartHour >= p.EndHour {
			return ErrInvalidPromotion
		}
	default:
		return ErrUnknownKind
	}
	return nil
}

// Resolve reduces the promotion to the effective cart discount percent
// for the given lines. The percent applies to the post-line-discount
// subtotal, matching the pricing chain. Conditions that do not hold
// (outside the happy-hour window, no membership, target product absent)
// resolve to zero rather than failing the checkout.
func (p Promotion) Resolve(lines []cartdomain.Line, at time.Time, isMember bool) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	switch p.Kind {
	case KindPercentageOff:
		return p.Percent, nil

	case KindMemberOnly:
		if !isMember {
			return 0, nil
		}
		return p.Percent, nil

	case KindHappyHour:
		hour := at.Hour()
		if hour < p.StartHour || hour >= p.EndHour {
			return 0, nil
		}
		return p.Percent, nil

	case KindFixedOff:
		return amountAsPercent(p.Amount, subtotal(lines)), nil

	case KindBuyXGetY:
		// Every full group of Buy+Free units earns Free units at no
		// charge; the free value converts to a cart-level percent.
		for _, line := range lines {
			if line.ProductID != p.ProductID {
				continue
			}
			groups := line.Quantity / (p.BuyQuantity + p.FreeQuantity)
			if groups == 0 {
				return 0, nil
			}
			free := line.UnitPrice.MulInt(groups * p.FreeQuantity)
			return amountAsPercent(free, subtotal(lines)), nil
		}
		return 0, nil
	}

	return 0, ErrUnknownKind
}

func subtotal(lines []cartdomain.Line) money.Money {
	sum := money.Zero
	for _, line := range lines {
		sum = sum.Add(line.Subtotal)
	}
	return sum
}

// amountAsPercent converts a fixed reduction into the percent of the
// subtotal it represents, capped at 100 so the total never goes negative.
func amountAsPercent(amount, subtotal money.Money) float64 {
	if subtotal.IsZero() || amount.IsZero() {
		return 0
	}
	pct := amount.Decimal().Div(subtotal.Decimal()).Mul(decimal.NewFromInt(100))
	value := pct.InexactFloat64()
	if value > 100 {
		return 100
	}
	return value
}
