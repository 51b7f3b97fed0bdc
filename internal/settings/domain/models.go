package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RegisterSettings carries the branch-wide pricing knobs read once per
// checkout: the flat tax rate and the loyalty accrual ratio.
type RegisterSettings struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	BranchID      snowflake.ID `gorm:"not null;uniqueIndex" json:"branch_id"`
	TaxRate       float64      `gorm:"type:numeric(6,4);not null" json:"tax_rate"`
	PointsPerUnit int64        `gorm:"not null" json:"points_per_unit"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (RegisterSettings) TableName() string { return "register_settings" }

func (s *RegisterSettings) Validate() error {
	if s.TaxRate < 0 || s.TaxRate >= 1 {
		return ErrInvalidTaxRate
	}
	if s.PointsPerUnit < 1 {
		return ErrInvalidPointsRatio
	}
	return nil
}
