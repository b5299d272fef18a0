package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration.
type Config struct {
	DBDriver    string
	DatabaseURL string // PostgreSQL connection string
	SQLitePath  string

	DBMaxConns        int32
	DBMaxConnLifetime time.Duration

	// HoldTimeout bounds how long a unit waits for an account hold before failing busy.
	HoldTimeout          time.Duration
	MaxReferenceAttempts int
	HistoryMaxLimit      int

	LogLevel     string
	IsProduction bool
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("LEDGER_DB_DRIVER", DriverSQLite)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("SQLITE_PATH", "ledger.db")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MAX_CONN_LIFETIME", "1h")
	v.SetDefault("LEDGER_HOLD_TIMEOUT", "5s")
	v.SetDefault("LEDGER_MAX_REFERENCE_ATTEMPTS", 3)
	v.SetDefault("LEDGER_HISTORY_MAX_LIMIT", 100)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("IS_PRODUCTION", false)

	// Actual environment variables override the .env file and the defaults.
	v.AutomaticEnv()

	cfg := &Config{
		DBDriver:             strings.ToLower(strings.TrimSpace(v.GetString("LEDGER_DB_DRIVER"))),
		DatabaseURL:          v.GetString("PGSQL_URL"),
		SQLitePath:           v.GetString("SQLITE_PATH"),
		DBMaxConns:           v.GetInt32("DB_MAX_CONNS"),
		MaxReferenceAttempts: v.GetInt("LEDGER_MAX_REFERENCE_ATTEMPTS"),
		HistoryMaxLimit:      v.GetInt("LEDGER_HISTORY_MAX_LIMIT"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		IsProduction:         v.GetBool("IS_PRODUCTION"),
	}

	holdTimeoutStr := v.GetString("LEDGER_HOLD_TIMEOUT")
	holdTimeout, err := time.ParseDuration(holdTimeoutStr)
	if err != nil || holdTimeout <= 0 {
		holdTimeout = 5 * time.Second
		log.Printf("Warning: Invalid value for LEDGER_HOLD_TIMEOUT ('%s'). Defaulting to %s.\n", holdTimeoutStr, holdTimeout)
	}
	cfg.HoldTimeout = holdTimeout

	lifetimeStr := v.GetString("DB_MAX_CONN_LIFETIME")
	lifetime, err := time.ParseDuration(lifetimeStr)
	if err != nil {
		lifetime = time.Hour
		log.Printf("Warning: Invalid value for DB_MAX_CONN_LIFETIME ('%s'). Defaulting to %s.\n", lifetimeStr, lifetime)
	}
	cfg.DBMaxConnLifetime = lifetime

	if cfg.MaxReferenceAttempts < 1 {
		log.Printf("Warning: LEDGER_MAX_REFERENCE_ATTEMPTS must be at least 1 (got %d). Defaulting to 3.\n", cfg.MaxReferenceAttempts)
		cfg.MaxReferenceAttempts = 3
	}
	if cfg.HistoryMaxLimit < 1 {
		log.Printf("Warning: LEDGER_HISTORY_MAX_LIMIT must be at least 1 (got %d). Defaulting to 100.\n", cfg.HistoryMaxLimit)
		cfg.HistoryMaxLimit = 100
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL must be set when LEDGER_DB_DRIVER is %q", DriverPostgres)
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH must be set when LEDGER_DB_DRIVER is %q", DriverSQLite)
		}
	default:
		return nil, fmt.Errorf("unsupported LEDGER_DB_DRIVER %q (want %q or %q)", cfg.DBDriver, DriverPostgres, DriverSQLite)
	}

	return cfg, nil
}
