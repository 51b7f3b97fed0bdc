package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/kasira/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListTransactionFilter struct {
	RegisterID  string
	MemberID    *snowflake.ID
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// Repository persists checkout outcomes. Commit is the only write path
// and is atomic: the header, its lines, the stock decrement, and the
// loyalty accrual all land in one database transaction or none do.
type Repository interface {
	Commit(ctx context.Context, transaction *Transaction) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Transaction, error)
	List(ctx context.Context, db *gorm.DB, filter ListTransactionFilter, page pagination.Pagination) ([]*Transaction, error)
}
