package kv

import (
	"context"
	"errors"

	"github.com/ikkim/maison-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each slot under prefix+slot as a plain string value.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(slot string) string {
	return s.prefix + slot
}

func (s *RedisStore) Load(ctx context.Context, slot string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		logger.Error("Failed to load slot from redis", err, map[string]interface{}{
			"slot": slot,
		})
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, slot string, data []byte) error {
	if err := s.client.Set(ctx, s.key(slot), data, 0).Err(); err != nil {
		logger.Error("Failed to save slot to redis", err, map[string]interface{}{
			"slot":  slot,
			"bytes": len(data),
		})
		return err
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, slot string) error {
	if err := s.client.Del(ctx, s.key(slot)).Err(); err != nil {
		logger.Error("Failed to delete slot from redis", err, map[string]interface{}{
			"slot": slot,
		})
		return err
	}
	return nil
}

func (s *RedisStore) Close() error {
	logger.Info("Closing Redis connection", nil)
	return s.client.Close()
}
