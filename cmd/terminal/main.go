// Package main runs the POS terminal agent: a local SQLite catalog replica
// plus a sync loop against the central server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"stocktrail/internal/config"
	"stocktrail/internal/terminal"
	"stocktrail/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadTerminal()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithLogger(ctx, log.With("terminal_id", cfg.TerminalID))

	log.Infow("starting terminal agent",
		"terminal_id", cfg.TerminalID,
		"server_url", cfg.ServerURL,
		"replica_path", cfg.ReplicaPath,
	)

	replica, err := terminal.NewReplica(cfg.ReplicaPath)
	if err != nil {
		log.Fatalw("failed to open replica", "error", err)
	}
	defer replica.Close()

	client, err := terminal.NewClient(cfg.ServerURL, cfg.TerminalID, cfg.HTTPTimeout)
	if err != nil {
		log.Fatalw("failed to create sync client", "error", err)
	}

	svc := terminal.NewService(replica, client, cfg.LocationID)

	// First sync on startup. A cold terminal has no catalog yet; failure is
	// tolerated so the till can open offline.
	if err := svc.SyncOnce(ctx); err != nil {
		log.Warnw("initial sync failed, continuing offline", "error", err)
	}

	go svc.Run(ctx, cfg.SyncInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down terminal agent...")
	cancel()

	if pending, err := replica.PendingCount(context.Background()); err == nil && pending > 0 {
		log.Infow("unsynced sales remain queued", "count", pending)
	}
	log.Info("terminal agent stopped")
}
