package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	inventorydomain "github.com/smallbiznis/kasira/internal/inventory/domain"
	loyaltydomain "github.com/smallbiznis/kasira/internal/loyalty/domain"
	"github.com/smallbiznis/kasira/internal/transaction/domain"
	"github.com/smallbiznis/kasira/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type repo struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func Provide(p Params) domain.Repository {
	return &repo{
		db:    p.DB,
		log:   p.Log.Named("transaction.repository"),
		genID: p.GenID,
	}
}

// Commit writes the sale as one database transaction. Stock decrements
// use a guarded UPDATE so a concurrent sale of the last units fails the
// whole commit instead of driving quantities negative.
func (r *repo) Commit(ctx context.Context, transaction *domain.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Create(transaction).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		if len(transaction.Lines) > 0 {
			for i := range transaction.Lines {
				transaction.Lines[i].TransactionID = transaction.ID
			}
			if err := tx.Create(&transaction.Lines).Error; err != nil {
				return fmt.Errorf("insert transaction lines: %w", err)
			}
		}

		for _, line := range transaction.Lines {
			res := tx.Exec(
				`UPDATE stock_levels
				 SET quantity = quantity - ?, updated_at = ?
				 WHERE product_id = ? AND quantity >= ?`,
				line.Quantity,
				transaction.CreatedAt,
				line.ProductID,
				line.Quantity,
			)
			if res.Error != nil {
				return fmt.Errorf("decrement stock for product %s: %w", line.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("product %s: %w", line.ProductID, inventorydomain.ErrInsufficientStock)
			}
		}

		if transaction.MemberID != nil && transaction.PointsEarned > 0 {
			res := tx.Model(&loyaltydomain.Member{}).
				Where("id = ?", *transaction.MemberID).
				Updates(map[string]any{
					"points_balance": gorm.Expr("points_balance + ?", transaction.PointsEarned),
					"updated_at":     transaction.CreatedAt,
				})
			if res.Error != nil {
				return fmt.Errorf("credit member points: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return loyaltydomain.ErrMemberNotFound
			}

			entry := loyaltydomain.PointsEntry{
				ID:            r.genID.Generate(),
				MemberID:      *transaction.MemberID,
				TransactionID: transaction.ID,
				Points:        transaction.PointsEarned,
				CreatedAt:     transaction.CreatedAt,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("insert loyalty entry: %w", err)
			}
		}

		return nil
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Transaction, error) {
	var transaction domain.Transaction
	err := db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", id).
		First(&transaction).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListTransactionFilter, page pagination.Pagination) ([]*domain.Transaction, error) {
	stmt := db.WithContext(ctx).Model(&domain.Transaction{})
	if filter.RegisterID != "" {
		stmt = stmt.Where("register_id = ?", filter.RegisterID)
	}
	if filter.MemberID != nil {
		stmt = stmt.Where("member_id = ?", *filter.MemberID)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339, cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("created_at < ? OR (created_at = ? AND id < ?)", createdAt, createdAt, cursor.ID)
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = 25
	}

	var transactions []*domain.Transaction
	err := stmt.
		Preload("Lines").
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}
