// Package seed bootstraps a fresh database so a new deployment can ring
// up a sale immediately.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	catalogdomain "github.com/smallbiznis/kasira/internal/catalog/domain"
	"github.com/smallbiznis/kasira/internal/config"
	inventorydomain "github.com/smallbiznis/kasira/internal/inventory/domain"
	settingsdomain "github.com/smallbiznis/kasira/internal/settings/domain"
)

// EnsureRegisterSettings creates the branch settings row from the
// configured defaults when none exists yet. Existing rows are left
// untouched; operators change them through the settings API.
func EnsureRegisterSettings(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var existing settingsdomain.RegisterSettings
	err = db.WithContext(ctx).
		Where("branch_id = ?", cfg.BranchID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	settings := settingsdomain.RegisterSettings{
		ID:            node.Generate(),
		BranchID:      snowflake.ID(cfg.BranchID),
		TaxRate:       cfg.DefaultTaxRate,
		PointsPerUnit: cfg.DefaultPointsPerUnit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	return db.WithContext(ctx).Create(&settings).Error
}

// EnsureDemoCatalog inserts a small starter catalog with stock when the
// products table is empty. It only runs when demo seeding is enabled.
func EnsureDemoCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&catalogdomain.Product{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		demo := []struct {
			sku        string
			name       string
			priceCents int64
			quantity   int64
		}{
			{"COF-001", "Coffee", 1200, 100},
			{"TEA-001", "Tea", 900, 100},
			{"SNA-001", "Croissant", 1500, 40},
			{"WTR-001", "Mineral Water", 500, 200},
		}

		for _, item := range demo {
			product := catalogdomain.Product{
				ID:         node.Generate(),
				SKU:        item.sku,
				Name:       item.name,
				PriceCents: item.priceCents,
				Active:     true,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			stock := inventorydomain.StockLevel{
				ProductID: product.ID,
				Quantity:  item.quantity,
				UpdatedAt: now,
			}
			if err := tx.Create(&stock).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
