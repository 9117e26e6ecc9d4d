// Package config loads the process configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultBcryptCost = 10

var (
	// ErrMissingSecret is returned when JWT_SECRET is not set.
	ErrMissingSecret = errors.New("JWT_SECRET is not set")

	// ErrInvalidConfig is returned when a variable holds an unusable value.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the full process configuration.
type Config struct {
	Addr         string
	JWTSecret    []byte
	BcryptCost   int
	StoreDriver  string
	RedisURL     string
	DatabaseURL  string
	SQLitePath   string
	LogLevel     slog.Level
	CORSOrigin   string
	EventsStream string
}

// FromEnv loads the configuration from the process environment.
func FromEnv() (Config, error) {
	return Load(os.Getenv)
}

// Load builds a Config using getenv to look up variables.
// A missing JWT_SECRET is fatal; there is no default signing secret.
func Load(getenv func(string) string) (Config, error) {
	cfg := Config{
		Addr:         getenv("ADDR"),
		JWTSecret:    []byte(getenv("JWT_SECRET")),
		BcryptCost:   defaultBcryptCost,
		StoreDriver:  strings.ToLower(strings.TrimSpace(getenv("STORE_DRIVER"))),
		RedisURL:     getenv("REDIS_URL"),
		DatabaseURL:  getenv("DATABASE_URL"),
		SQLitePath:   getenv("SQLITE_PATH"),
		CORSOrigin:   getenv("CORS_ORIGIN"),
		EventsStream: strings.ToLower(strings.TrimSpace(getenv("EVENTS_STREAM"))),
	}

	if len(cfg.JWTSecret) == 0 {
		return Config{}, ErrMissingSecret
	}

	if cfg.Addr == "" {
		cfg.Addr = ":3000"
	}
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = DriverMemory
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "var/todo.db"
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}

	if raw := getenv("BCRYPT_COST"); raw != "" {
		cost, err := strconv.Atoi(raw)
		if err != nil || cost <= 0 {
			return Config{}, fmt.Errorf("%w: BCRYPT_COST %q", ErrInvalidConfig, raw)
		}
		cfg.BcryptCost = cost
	}

	if raw := getenv("LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return Config{}, fmt.Errorf("%w: LOG_LEVEL %q", ErrInvalidConfig, raw)
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite:
	case DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL is required for the redis store", ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrInvalidConfig, c.StoreDriver)
	}

	switch c.EventsStream {
	case "", "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL is required for redis events", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown EVENTS_STREAM %q", ErrInvalidConfig, c.EventsStream)
	}

	return nil
}

// RedisEvents reports whether events go to Redis streams.
func (c Config) RedisEvents() bool {
	return c.EventsStream == "redis"
}
