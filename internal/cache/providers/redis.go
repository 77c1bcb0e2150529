package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"telegram-alerts-go/alert"

	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/config"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/metrics"
)

const storeRedis = "redis"

// Redis is a cache.Store backed by a single shared go-redis client.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(ctx context.Context, cfg config.Store) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.Timeout > 0 {
		opts.DialTimeout = cfg.Timeout
		opts.ReadTimeout = cfg.Timeout
		opts.WriteTimeout = cfg.Timeout
	}

	rdb := redis.NewClient(opts)

	// Connection check
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cannot connect to redis at %s: %w", opts.Addr, err)
	}

	zap.S().Infow("connected to Redis", "addr", opts.Addr, "db", opts.DB)

	return &Redis{rdb: rdb}, nil
}

// NewRedisFromClient wraps an already configured client.
func NewRedisFromClient(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (c *Redis) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreOp(storeRedis, "get", err, time.Since(start).Seconds())
	}()

	value, err = c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return value, true, nil
}

func (c *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreOp(storeRedis, "set", err, time.Since(start).Seconds())
	}()

	if err = c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		zap.S().Errorw(alert.Prefix("redis set error"), "key", key, "error", err)
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}
