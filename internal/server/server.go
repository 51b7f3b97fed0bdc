// Package server exposes the register API over HTTP: cart editing,
// quoting, checkout, the transaction journal, the catalog, and the
// branch settings.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/kasira/internal/cart/session"
	catalogdomain "github.com/smallbiznis/kasira/internal/catalog/domain"
	checkoutdomain "github.com/smallbiznis/kasira/internal/checkout/domain"
	"github.com/smallbiznis/kasira/internal/config"
	obslogger "github.com/smallbiznis/kasira/internal/observability/logger"
	obstracing "github.com/smallbiznis/kasira/internal/observability/tracing"
	settingsdomain "github.com/smallbiznis/kasira/internal/settings/domain"
	transactiondomain "github.com/smallbiznis/kasira/internal/transaction/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	genID          *snowflake.Node
	sessions       *session.Manager
	catalogSvc     catalogdomain.Service
	settingsSvc    settingsdomain.Service
	checkoutSvc    checkoutdomain.Service
	transactionsRp transactiondomain.Repository
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	GenID          *snowflake.Node
	Sessions       *session.Manager
	CatalogSvc     catalogdomain.Service
	SettingsSvc    settingsdomain.Service
	CheckoutSvc    checkoutdomain.Service
	TransactionsRp transactiondomain.Repository
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		sessions:       p.Sessions,
		catalogSvc:     p.CatalogSvc,
		settingsSvc:    p.SettingsSvc,
		checkoutSvc:    p.CheckoutSvc,
		transactionsRp: p.TransactionsRp,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	// -------- Registers --------
	register := api.Group("/registers/:register_id")
	register.GET("/cart", s.GetCart)
	register.POST("/cart/lines", s.AddCartLine)
	register.PATCH("/cart/lines/:product_id", s.UpdateCartLine)
	register.DELETE("/cart/lines/:product_id", s.RemoveCartLine)
	register.DELETE("/cart", s.ClearCart)
	register.POST("/quote", s.QuoteCart)
	register.POST("/checkout", s.Checkout)

	// -------- Transactions --------
	api.GET("/transactions", s.ListTransactions)
	api.GET("/transactions/:id", s.GetTransactionByID)

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProductByID)

	// -------- Settings --------
	api.GET("/settings", s.GetSettings)
	api.PATCH("/settings", s.UpdateSettings)
}
