package providers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/config"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/metrics"
)

const storeMemory = "memory"

var ErrMemoryClosed = errors.New("memory store is closed")

// Memory is an in-process cache.Store for running without Redis.
// Entries are not shared between processes.
type Memory struct {
	cache  *ristretto.Cache
	closed atomic.Bool
}

func NewMemory(cfg config.Memory) (*Memory, error) {
	maxCost, err := cfg.MaxCostBytes()
	if err != nil {
		return nil, err
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     int64(maxCost),
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create ristretto cache: %w", err)
	}
	return &Memory{cache: cache}, nil
}

func (c *Memory) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreOp(storeMemory, "get", err, time.Since(start).Seconds())
	}()

	if err = c.check(ctx); err != nil {
		return "", false, err
	}
	val, found := c.cache.Get(key)
	if !found {
		return "", false, nil
	}
	value, ok = val.(string)
	return value, ok, nil
}

func (c *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreOp(storeMemory, "set", err, time.Since(start).Seconds())
	}()

	if err = c.check(ctx); err != nil {
		return err
	}
	if !c.cache.SetWithTTL(key, value, int64(len(value)), ttl) {
		return fmt.Errorf("memory set: entry %q dropped", key)
	}
	// make the write visible to the next Get
	c.cache.Wait()
	return nil
}

func (c *Memory) Ping(ctx context.Context) error {
	return c.check(ctx)
}

// Close releases the cache. Later calls fail with ErrMemoryClosed.
func (c *Memory) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.cache.Close()
	}
	return nil
}

func (c *Memory) check(ctx context.Context) error {
	if c.closed.Load() {
		return ErrMemoryClosed
	}
	return ctx.Err()
}
