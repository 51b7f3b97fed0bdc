package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	catalogdomain "github.com/smallbiznis/kasira/internal/catalog/domain"
	"github.com/smallbiznis/kasira/internal/config"
	inventorydomain "github.com/smallbiznis/kasira/internal/inventory/domain"
	loyaltydomain "github.com/smallbiznis/kasira/internal/loyalty/domain"
	"github.com/smallbiznis/kasira/internal/seed"
	settingsdomain "github.com/smallbiznis/kasira/internal/settings/domain"
	transactiondomain "github.com/smallbiznis/kasira/internal/transaction/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// MySQL and sqlite deployments take the gorm schema directly.
			if err := conn.AutoMigrate(
				&catalogdomain.Product{},
				&inventorydomain.StockLevel{},
				&settingsdomain.RegisterSettings{},
				&loyaltydomain.Member{},
				&loyaltydomain.PointsEntry{},
				&transactiondomain.Transaction{},
				&transactiondomain.TransactionLine{},
			); err != nil {
				return err
			}
		}

		if err := seed.EnsureRegisterSettings(conn, cfg); err != nil {
			return err
		}
		if cfg.SeedDemoData {
			return seed.EnsureDemoCatalog(conn)
		}
		return nil
	}),
)
