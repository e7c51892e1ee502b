package redis

import (
	"context"
	"fmt"

	"github.com/ikkim/maison-backend/config"
	"github.com/ikkim/maison-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// NewClient connects to the configured Redis and pings it before returning.
// cfg.Timeout bounds dialing, each command and the initial ping.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	fields := map[string]interface{}{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis unreachable", err, fields)
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr(), err)
	}

	logger.Info("Redis connected", fields)
	return client, nil
}
