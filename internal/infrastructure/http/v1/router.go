// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stocktrail/internal/domain/catalog"
	"stocktrail/internal/domain/conflicts"
	"stocktrail/internal/domain/ledger"
	"stocktrail/internal/domain/orders"
	"stocktrail/internal/domain/snapshot"
	"stocktrail/internal/infrastructure/http/v1/handlers"
	"stocktrail/internal/infrastructure/http/v1/middleware"
	"stocktrail/internal/infrastructure/storage/postgres"
	"stocktrail/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	CatalogService  *catalog.Service
	OrderService    *orders.Service
	ConflictService *conflicts.Service
	Aggregator      *ledger.Aggregator
	LedgerStore     ledger.Store
	SnapshotBuilder *snapshot.Builder
	SnapshotCodec   *snapshot.Codec

	IdempotencyStore   *postgres.IdempotencyStore
	IdempotencyEnabled bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api/v1")
	if cfg.IdempotencyEnabled && cfg.IdempotencyStore != nil {
		api.Use(middleware.Idempotency(cfg.IdempotencyStore))
	}

	registerCatalogRoutes(api, cfg)
	registerOrderRoutes(api, cfg)
	registerStockRoutes(api, cfg)
	registerConflictRoutes(api, cfg)
	registerSyncRoutes(api, cfg)

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewCatalogHandler(cfg.CatalogService)

	products := rg.Group("/products")
	{
		products.POST("", h.Create)
		products.GET("", h.List)
		products.GET("/:id", h.Get)
		products.PUT("/:id", h.Update)
	}
}

func registerOrderRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewOrdersHandler(cfg.OrderService)

	ordersGroup := rg.Group("/orders")
	{
		ordersGroup.POST("", h.Commit)
		ordersGroup.GET("/:number", h.GetByNumber)
	}
}

func registerStockRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	stockHandler := handlers.NewStockHandler(cfg.Aggregator)
	ledgerHandler := handlers.NewLedgerHandler(cfg.LedgerStore)

	stock := rg.Group("/stock")
	{
		stock.GET("", stockHandler.Positions)
		stock.GET("/:productId", stockHandler.Get)
		stock.GET("/:productId/history", stockHandler.History)
	}

	rg.POST("/ledger/facts", ledgerHandler.Append)
}

func registerConflictRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewConflictsHandler(cfg.ConflictService)

	conflictsGroup := rg.Group("/conflicts")
	{
		conflictsGroup.GET("", h.List)
		conflictsGroup.POST("/resolve", h.Resolve)
	}
}

func registerSyncRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewSyncHandler(cfg.SnapshotBuilder, cfg.SnapshotCodec, cfg.OrderService)

	sync := rg.Group("/sync")
	{
		sync.GET("/snapshot", h.Snapshot)
		sync.POST("/orders", h.PushOrders)
	}
}
