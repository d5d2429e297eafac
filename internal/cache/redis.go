package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache is an implementation of the Cache interface using Redis.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// RedisConfig contains options for creating a new RedisCache.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisCache connects and pings Redis.
func NewRedisCache(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.Address))
	return &RedisCache{client: rdb, logger: logger}, nil
}

// SetNX stores a value only if the key is absent.
func (r *RedisCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, expiration).Result()
	if err != nil {
		r.logger.Warn("Redis SETNX failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return ok, nil
}

// Delete removes a value from Redis.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Warn("Redis DEL failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
