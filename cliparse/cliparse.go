// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/order-lottery/store"
)

const (
	DefaultPort         = 3318
	DefaultDataDir      = "data"
	DefaultTimeZone     = "Asia/Shanghai"
	DefaultRollInterval = 50 * time.Millisecond
	DefaultLogLevel     = "info"
	DefaultEnvFile      = ".env"
)

type Config struct {
	Port             int
	DataDir          string
	StoreType        string
	DatabaseURL      string
	DrawPasswordHash string
	PoolPasswordHash string
	TimeZone         string
	Location         *time.Location
	RollInterval     time.Duration
	LogLevel         string
	EnvFile          string
	TrustProxy       bool
}

// ParseFlags reads the configuration from args, then the dotenv file, then
// the process environment. Flags win over the environment.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("order-lottery", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DataDir, "data-dir", "", "Directory for the JSON store")
	fs.StringVar(&cfg.StoreType, "t", "", "Store type (json, sqlite or postgres)")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL for the sqlite and postgres stores")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.DrawPasswordHash, "draw-hash", "", "Drawing area password hash (prefer env)")
	fs.StringVar(&cfg.PoolPasswordHash, "pool-hash", "", "Pool management password hash (prefer env)")

	fs.StringVar(&cfg.TimeZone, "tz", "", "Time zone for timestamps")
	fs.DurationVar(&cfg.RollInterval, "roll-interval", 0, "Rolling animation interval")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level")
	fs.StringVar(&cfg.EnvFile, "env-file", DefaultEnvFile, "Optional dotenv file")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", false, "Trust X-Forwarded-For and X-Real-IP from a reverse proxy")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(cfg.EnvFile); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	cfg.DataDir = firstNonEmpty(cfg.DataDir, os.Getenv("DATA_DIR"), DefaultDataDir)
	cfg.StoreType = firstNonEmpty(cfg.StoreType, os.Getenv("STORE_TYPE"), store.TypeJSON)
	cfg.DatabaseURL = firstNonEmpty(cfg.DatabaseURL, os.Getenv("DATABASE_URL"))

	switch cfg.StoreType {
	case store.TypeJSON:
	case store.TypeSQLite, store.TypePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("database URL required for %s store (use -d or DATABASE_URL env)", cfg.StoreType)
		}
	default:
		return Config{}, fmt.Errorf("unknown store type %q", cfg.StoreType)
	}

	// Secrets - MUST be provided
	cfg.DrawPasswordHash = firstNonEmpty(cfg.DrawPasswordHash, os.Getenv("DRAW_PASSWORD_HASH"))
	if cfg.DrawPasswordHash == "" {
		return Config{}, errors.New("DRAW_PASSWORD_HASH required")
	}
	cfg.PoolPasswordHash = firstNonEmpty(cfg.PoolPasswordHash, os.Getenv("POOL_PASSWORD_HASH"))
	if cfg.PoolPasswordHash == "" {
		return Config{}, errors.New("POOL_PASSWORD_HASH required")
	}

	cfg.TimeZone = firstNonEmpty(cfg.TimeZone, os.Getenv("TIME_ZONE"), DefaultTimeZone)
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid time zone %q: %w", cfg.TimeZone, err)
	}
	cfg.Location = loc

	if cfg.RollInterval == 0 {
		if s := os.Getenv("ROLL_INTERVAL"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid ROLL_INTERVAL env variable")
			}
			cfg.RollInterval = d
		} else {
			cfg.RollInterval = DefaultRollInterval
		}
	}
	if cfg.RollInterval <= 0 {
		return Config{}, errors.New("roll interval must be positive")
	}

	cfg.LogLevel = firstNonEmpty(cfg.LogLevel, os.Getenv("LOG_LEVEL"), DefaultLogLevel)
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}

	if !cfg.TrustProxy {
		if s := os.Getenv("TRUST_PROXY"); s != "" {
			on, err := strconv.ParseBool(s)
			if err != nil {
				return Config{}, errors.New("invalid TRUST_PROXY env variable")
			}
			cfg.TrustProxy = on
		}
	}

	return cfg, nil
}

// loadEnvFile sets variables from path without overriding ones already in
// the environment. A missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
