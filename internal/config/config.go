// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds configuration for the API server and worker.
type Config struct {
	App         AppConfig
	HTTP        HTTPConfig
	DB          DBConfig
	Idempotency IdempotencyConfig
	Worker      WorkerConfig
}

type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type HTTPConfig struct {
	Port         string        `envconfig:"APP_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
}

type DBConfig struct {
	DSN             string        `envconfig:"DATABASE_URL" required:"true"`
	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns        int32         `envconfig:"DB_MIN_CONNS" default:"5"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

type IdempotencyConfig struct {
	Enabled bool          `envconfig:"IDEMPOTENCY_ENABLED" default:"true"`
	TTL     time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
}

type WorkerConfig struct {
	// ScanInterval controls how often the conflict detector is polled.
	ScanInterval time.Duration `envconfig:"CONFLICT_SCAN_INTERVAL" default:"5m"`
	// CleanupInterval controls expired idempotency record cleanup.
	CleanupInterval time.Duration `envconfig:"IDEMPOTENCY_CLEANUP_INTERVAL" default:"1h"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}

// TerminalConfig holds configuration for the POS terminal agent.
type TerminalConfig struct {
	TerminalID   string        `envconfig:"TERMINAL_ID" required:"true"`
	LocationID   string        `envconfig:"LOCATION_ID" required:"true"`
	ServerURL    string        `envconfig:"SERVER_URL" required:"true"`
	ReplicaPath  string        `envconfig:"REPLICA_PATH" default:"./data/terminal.db"`
	SyncInterval time.Duration `envconfig:"SYNC_INTERVAL" default:"1m"`
	HTTPTimeout  time.Duration `envconfig:"SYNC_HTTP_TIMEOUT" default:"30s"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadTerminal reads terminal agent configuration from the environment.
func LoadTerminal() (*TerminalConfig, error) {
	var cfg TerminalConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}
