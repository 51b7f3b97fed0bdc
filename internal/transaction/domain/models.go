// Package domain holds the persisted outcome of a checkout. A
// transaction is immutable once created; refunds and voids would be
// separate compensating records, not edits.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrNotFound  = errors.New("not_found")
	ErrInvalidID = errors.New("invalid_id")
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodQR   PaymentMethod = "qr"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodQR:
		return true
	default:
		return false
	}
}

// Transaction is the record handed to storage and reporting. Amounts
// are integer minor units; the 2-decimal rounding has already happened
// by the time a record is built.
type Transaction struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	BranchID      snowflake.ID      `gorm:"not null;index" json:"branch_id"`
	RegisterID    string            `gorm:"type:text;not null" json:"register_id"`
	ReceiptNumber string            `gorm:"type:text;not null;uniqueIndex" json:"receipt_number"`
	MemberID      *snowflake.ID     `gorm:"index" json:"member_id,omitempty"`
	PaymentMethod PaymentMethod     `gorm:"type:text;not null" json:"payment_method"`
	SubtotalCents int64             `gorm:"not null" json:"subtotal_cents"`
	DiscountCents int64             `gorm:"not null" json:"discount_cents"`
	TaxCents      int64             `gorm:"not null" json:"tax_cents"`
	TotalCents    int64             `gorm:"not null" json:"total_cents"`
	PaidCents     int64             `gorm:"not null" json:"paid_cents"`
	ChangeCents   int64             `gorm:"not null" json:"change_cents"`
	PointsEarned  int64             `gorm:"not null" json:"points_earned"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Lines []TransactionLine `gorm:"foreignKey:TransactionID" json:"lines"`
}

func (Transaction) TableName() string { return "transactions" }

// TransactionLine snapshots one cart line plus its prorated share of
// the cart-level discount and tax. Shares sum exactly to the header
// amounts, within the already-applied cent rounding.
type TransactionLine struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	TransactionID      snowflake.ID `gorm:"not null;index" json:"transaction_id"`
	ProductID          snowflake.ID `gorm:"not null" json:"product_id"`
	ProductName        string       `gorm:"type:text;not null" json:"product_name"`
	Quantity           int64        `gorm:"not null" json:"quantity"`
	UnitPriceCents     int64        `gorm:"not null" json:"unit_price_cents"`
	DiscountPercent    float64      `gorm:"type:numeric(5,2);not null" json:"discount_percent"`
	SubtotalCents      int64        `gorm:"not null" json:"subtotal_cents"`
	DiscountShareCents int64        `gorm:"not null" json:"discount_share_cents"`
	TaxShareCents      int64        `gorm:"not null" json:"tax_share_cents"`
}

func (TransactionLine) TableName() string { return "transaction_lines" }
