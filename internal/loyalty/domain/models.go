package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrMemberNotFound = errors.New("member_not_found")

// Member is a loyalty account. PointsBalance is maintained inside the
// same database transaction that commits a sale.
type Member struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Name          string       `gorm:"type:text;not null" json:"name"`
	PointsBalance int64        `gorm:"not null;default:0" json:"points_balance"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Member) TableName() string { return "members" }

// PointsEntry is one immutable accrual in the loyalty ledger, linked to
// the transaction that earned it.
type PointsEntry struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	MemberID      snowflake.ID `gorm:"not null;index" json:"member_id"`
	TransactionID snowflake.ID `gorm:"not null;index" json:"transaction_id"`
	Points        int64        `gorm:"not null" json:"points"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PointsEntry) TableName() string { return "loyalty_points_entries" }
