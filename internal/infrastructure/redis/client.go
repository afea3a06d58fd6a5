package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mechinsul/leadform/internal/infrastructure/config"
)

const pingTimeout = 5 * time.Second

// Options maps the config onto client options
func Options(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	}
}

// NewClient cria e testa conexão com Redis
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts := Options(cfg)
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}
