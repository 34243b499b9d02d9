// Package main runs the background worker: periodic conflict detection and
// cleanup of expired idempotency records.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stocktrail/internal/config"
	"stocktrail/internal/domain/conflicts"
	"stocktrail/internal/infrastructure/storage/postgres"
	"stocktrail/internal/infrastructure/storage/postgres/catalog_repo"
	"stocktrail/internal/infrastructure/storage/postgres/ledger_repo"
	"stocktrail/pkg/logger"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithLogger(ctx, log)

	log.Info("starting stocktrail worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.DSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	ledgerRepo := ledger_repo.NewLedgerRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	conflictService := conflicts.NewService(ledgerRepo, productRepo)
	idempotencyStore := postgres.NewIdempotencyStore(txManager, cfg.Idempotency.TTL)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		runConflictScan(ctx, conflictService, cfg.Worker.ScanInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runIdempotencyCleanup(ctx, idempotencyStore, cfg.Worker.CleanupInterval)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()
	wg.Wait()
	log.Info("worker stopped")
}

// runConflictScan polls aggregate positions for oversold stock and logs
// every conflict it finds so operators can resolve them.
func runConflictScan(ctx context.Context, svc *conflicts.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			found, err := svc.Detect(ctx)
			if err != nil {
				logger.Error(ctx, "conflict scan failed", "error", err)
				continue
			}
			if len(found) == 0 {
				logger.Debug(ctx, "conflict scan clean")
				continue
			}
			for _, c := range found {
				logger.Warn(ctx, "oversold stock detected",
					"productId", c.ProductID,
					"sku", c.SKU,
					"locationId", c.LocationID,
					"stock", c.Stock,
					"oversoldBy", c.OversoldBy,
				)
			}
			logger.Info(ctx, "conflict scan finished", "conflicts", len(found))
		}
	}
}

func runIdempotencyCleanup(ctx context.Context, store *postgres.IdempotencyStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.CleanupExpired(ctx)
			if err != nil {
				logger.Error(ctx, "idempotency cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info(ctx, "expired idempotency records removed", "count", removed)
			}
		}
	}
}
