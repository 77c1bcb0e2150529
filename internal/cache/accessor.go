package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/metrics"
)

const (
	DefaultTimeout = 2 * time.Second

	outcomeHit     = "hit"
	outcomeMiss    = "miss"
	outcomeCorrupt = "corrupt"
)

// Accessor reads and writes values of type T through a Store.
// It keeps no state of its own besides its options.
type Accessor[T any] struct {
	store   Store
	name    string
	prefix  string
	timeout time.Duration
}

type Option func(*options)

type options struct {
	name    string
	prefix  string
	timeout time.Duration
}

// WithName labels the accessor in metrics and logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithPrefix is prepended to every key.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithTimeout bounds each store round-trip. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func NewAccessor[T any](store Store, opts ...Option) *Accessor[T] {
	o := options{name: "default", timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return &Accessor[T]{
		store:   store,
		name:    o.name,
		prefix:  o.prefix,
		timeout: o.timeout,
	}
}

// Get returns the cached value for key. ok is false on a miss, which includes
// payloads that cannot be decoded into T. err is non-nil only when the store fails.
func (a *Accessor[T]) Get(ctx context.Context, key string) (value T, ok bool, err error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	raw, found, err := a.store.Get(ctx, a.prefix+key)
	if err != nil {
		return value, false, fmt.Errorf("%w: get %q: %w", ErrStoreUnavailable, key, err)
	}
	if !found {
		metrics.RecordLookup(a.name, outcomeMiss)
		return value, false, nil
	}

	var decoded T
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		metrics.RecordLookup(a.name, outcomeCorrupt)
		zap.S().Warnw("discarding undecodable cache entry", "accessor", a.name, "key", key, "error", err)
		return value, false, nil
	}

	metrics.RecordLookup(a.name, outcomeHit)
	return decoded, true, nil
}

// Set stores value under key as JSON, overwriting any existing entry.
// ttl must be positive: entries written here always expire.
func (a *Accessor[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %q: %w", key, err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.store.Set(ctx, a.prefix+key, string(payload), ttl); err != nil {
		return fmt.Errorf("%w: set %q: %w", ErrStoreUnavailable, key, err)
	}
	return nil
}

func (a *Accessor[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}
