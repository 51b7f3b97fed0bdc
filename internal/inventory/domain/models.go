package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrInsufficientStock = errors.New("insufficient_stock")

// StockLevel tracks the on-hand quantity for one product. Rows are only
// decremented inside the transaction commit, with a non-negative guard;
// there is no reservation step in this engine.
type StockLevel struct {
	ProductID snowflake.ID `gorm:"primaryKey" json:"product_id"`
	Quantity  int64        `gorm:"not null" json:"quantity"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (StockLevel) TableName() string { return "stock_levels" }
