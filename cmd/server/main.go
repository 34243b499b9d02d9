// Package main is the entry point for the stocktrail API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stocktrail/internal/config"
	"stocktrail/internal/domain/catalog"
	"stocktrail/internal/domain/conflicts"
	"stocktrail/internal/domain/ledger"
	"stocktrail/internal/domain/orders"
	"stocktrail/internal/domain/snapshot"
	v1 "stocktrail/internal/infrastructure/http/v1"
	"stocktrail/internal/infrastructure/storage/postgres"
	"stocktrail/internal/infrastructure/storage/postgres/catalog_repo"
	"stocktrail/internal/infrastructure/storage/postgres/ledger_repo"
	"stocktrail/internal/infrastructure/storage/postgres/order_repo"
	"stocktrail/pkg/logger"
	"stocktrail/pkg/numerator"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	log.Info("starting stocktrail server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.DSN)
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns
	poolCfg.MaxConnLifetime = cfg.DB.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.DB.MaxConnIdleTime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}
	log.Info("migrations applied")

	// --- Repositories ---
	txManager := postgres.NewTxManager(pool)
	ledgerRepo := ledger_repo.NewLedgerRepo(txManager)
	orderRepo := order_repo.NewOrderRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)

	// --- Services ---
	numeratorService := numerator.New(pool)
	catalogService := catalog.NewService(productRepo)
	orderService := orders.NewService(orderRepo, ledgerRepo, txManager, numeratorService)
	conflictService := conflicts.NewService(ledgerRepo, productRepo)
	aggregator := ledger.NewAggregator(ledgerRepo)
	snapshotBuilder := snapshot.NewBuilder(productRepo, ledgerRepo)

	snapshotCodec, err := snapshot.NewCodec()
	if err != nil {
		log.Fatalw("failed to initialize snapshot codec", "error", err)
	}

	idempotencyStore := postgres.NewIdempotencyStore(txManager, cfg.Idempotency.TTL)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:               pool,
		Logger:             log,
		CatalogService:     catalogService,
		OrderService:       orderService,
		ConflictService:    conflictService,
		Aggregator:         aggregator,
		LedgerStore:        ledgerRepo,
		SnapshotBuilder:    snapshotBuilder,
		SnapshotCodec:      snapshotCodec,
		IdempotencyStore:   idempotencyStore,
		IdempotencyEnabled: cfg.Idempotency.Enabled,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
