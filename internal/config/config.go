package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config represents the application configuration, read from the environment.
type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	GinMode     string   `env:"GIN_MODE" envDefault:"debug"`
	StoreDriver string   `env:"STORE_DRIVER" envDefault:"postgres"`
	JWTSecret   string   `env:"JWT_SECRET"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://127.0.0.1:5173"`

	Database  DatabaseConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Ledger    LedgerConfig
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name     string `env:"DB_NAME" envDefault:"postgres"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`  // "debug", "info", "warn", "error"
	Format string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// RateLimitConfig bounds write traffic per caller on the submission and action endpoints.
type RateLimitConfig struct {
	RPS             float64       `env:"RATE_LIMIT_RPS" envDefault:"5"`
	Burst           int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"10m"`
}

// LedgerConfig controls the periodic reconciliation job.
type LedgerConfig struct {
	ReconcileSchedule string `env:"LEDGER_RECONCILE_SCHEDULE" envDefault:"@every 15m"`
}

// Load reads an optional dotenv file and then parses the environment.
// A missing dotenv file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %s or %s)", c.StoreDriver, StoreDriverPostgres, StoreDriverMemory)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit must be positive (rps=%v burst=%d)", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	if c.GinMode == "release" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in release mode")
	}
	return nil
}

// DSN builds the postgres connection URL.
func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}
