package kv

import (
	"context"
	"fmt"

	"github.com/ikkim/maison-backend/config"
	"github.com/ikkim/maison-backend/internal/db"
	"github.com/ikkim/maison-backend/pkg/logger"
	"github.com/ikkim/maison-backend/pkg/redis"
)

// Open builds the Store selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	logger.Info("Opening slot store", map[string]interface{}{
		"driver": cfg.Storage.Driver,
	})

	switch cfg.Storage.Driver {
	case "postgres", "sqlite":
		gdb, err := db.Open(&cfg.Storage)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(gdb), nil
	case "redis":
		client, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Storage.KeyPrefix), nil
	case "badger":
		return OpenBadgerStore(cfg.Storage.BadgerPath, cfg.Storage.KeyPrefix)
	case "memory":
		logger.Warn("Using in-memory slot store; state will not survive a restart", nil)
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
