package main

import (
	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/smallbiznis/kasira/internal/cart/session"
	"github.com/smallbiznis/kasira/internal/catalog"
	"github.com/smallbiznis/kasira/internal/checkout"
	"github.com/smallbiznis/kasira/internal/clock"
	"github.com/smallbiznis/kasira/internal/config"
	"github.com/smallbiznis/kasira/internal/migration"
	"github.com/smallbiznis/kasira/internal/observability"
	"github.com/smallbiznis/kasira/internal/server"
	"github.com/smallbiznis/kasira/internal/settings"
	"github.com/smallbiznis/kasira/internal/transaction"
	"github.com/smallbiznis/kasira/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		fx.Provide(NewRedis),
		db.Module,
		clock.Module,
		migration.Module,

		fx.Provide(session.NewManager),
		catalog.Module,
		settings.Module,
		transaction.Module,
		checkout.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// NewRedis returns nil when no address is configured; the catalog then
// reads straight from the database.
func NewRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}
