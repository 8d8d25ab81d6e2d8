package kv

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config selects and configures a backend.
type Config struct {
	Backend  string
	RedisURL string
	// Pool is required for the postgres backend.
	Pool *pgxpool.Pool
}

// New opens the configured backend.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("kv: redis backend requires a redis url")
		}
		return NewRedisStore(ctx, cfg.RedisURL)
	case BackendPostgres:
		if cfg.Pool == nil {
			return nil, fmt.Errorf("kv: postgres backend requires a database pool")
		}
		return NewPostgresStore(cfg.Pool), nil
	default:
		return nil, fmt.Errorf("kv: unknown backend %q", cfg.Backend)
	}
}
