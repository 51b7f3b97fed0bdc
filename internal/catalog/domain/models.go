package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/kasira/pkg/money"
)

// Product is a catalog item. Checkout never re-reads it after a line is
// added; the cart keeps name and price as add-time snapshots.
type Product struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	SKU        string       `gorm:"type:text;not null;uniqueIndex" json:"sku"`
	Name       string       `gorm:"type:text;not null" json:"name"`
	PriceCents int64        `gorm:"not null" json:"price_cents"`
	Active     bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p Product) Price() money.Money {
	return money.FromCents(p.PriceCents)
}
