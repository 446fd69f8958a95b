// Package config loads server configuration from the environment and
// builds the persistence backend.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/acervo-digital/archive-content/pkg/archive"
	"github.com/acervo-digital/archive-content/pkg/archive/repo/memory"
	"github.com/acervo-digital/archive-content/pkg/archive/repo/postgres"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the server configuration.
//
// DATABASE_URL selects the backend: empty or "memory" runs on the
// in-memory store, a postgres:// URL runs on PostgreSQL.
type Config struct {
	Port          string `env:"PORT" env-default:"8080"`
	Environment   string `env:"ENVIRONMENT" env-default:"development"`
	DatabaseURL   string `env:"DATABASE_URL" env-default:""`
	RunMigrations bool   `env:"RUN_MIGRATIONS" env-default:"true"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if !c.usesMemory() && !c.usesPostgres() {
		return fmt.Errorf("unsupported DATABASE_URL format (use 'memory' or 'postgresql://...')")
	}
	return nil
}

func (c *Config) usesMemory() bool {
	return c.DatabaseURL == "" || c.DatabaseURL == "memory"
}

func (c *Config) usesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") ||
		strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// BuildStore constructs the configured store. The returned cleanup
// function releases the backing connections and is always safe to call.
func (c *Config) BuildStore(ctx context.Context) (archive.Store, func(), error) {
	if c.usesMemory() {
		return memory.New(), func() {}, nil
	}

	if c.RunMigrations {
		if err := postgres.MigrateUp(c.DatabaseURL); err != nil {
			return nil, nil, err
		}
	}

	pool, err := pgxpool.New(ctx, c.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	return postgres.NewWithPool(pool), pool.Close, nil
}
