package cache

import (
	"time"

	"go.uber.org/zap"
)

// DefaultMaxTTL bounds how far in the future an ExpiringCache record may expire.
const DefaultMaxTTL = 60 * time.Second

// Clock supplies the current instant to an ExpiringCache.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// EvictFunc is called with every entry an engine drops on its own:
// LRU evictions for RecencyCache, swept records for ExpiringCache.
// Explicit Remove and Purge do not call it.
type EvictFunc[K comparable, V any] func(key K, value V)

type options[K comparable, V any] struct {
	logger  *zap.Logger
	clock   Clock
	onEvict EvictFunc[K, V]
	clone   func(V) V
	maxTTL  time.Duration
}

func defaultOptions[K comparable, V any]() *options[K, V] {
	return &options[K, V]{
		logger: zap.NewNop(),
		clock:  SystemClock,
		maxTTL: DefaultMaxTTL,
	}
}

// Option configures a RecencyCache or an ExpiringCache.
type Option[K comparable, V any] func(*options[K, V])

// WithLogger sets the logger used for construction warnings and debug traces.
func WithLogger[K comparable, V any](logger *zap.Logger) Option[K, V] {
	return func(o *options[K, V]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock replaces the wall clock, mostly for tests.
// Only ExpiringCache reads the clock.
func WithClock[K comparable, V any](clock Clock) Option[K, V] {
	return func(o *options[K, V]) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithEvictionListener registers fn to observe evicted and expired entries.
// fn runs after the cache lock is released.
func WithEvictionListener[K comparable, V any](fn EvictFunc[K, V]) Option[K, V] {
	return func(o *options[K, V]) {
		o.onEvict = fn
	}
}

// WithCloner makes Get hand out clone(value) instead of the stored value.
// Use it when V shares memory (slices, maps, pointers) that callers might mutate.
// Remove returns the stored value as is, since the cache no longer holds it.
func WithCloner[K comparable, V any](clone func(V) V) Option[K, V] {
	return func(o *options[K, V]) {
		o.clone = clone
	}
}

// WithMaxTTL overrides DefaultMaxTTL for an ExpiringCache.
func WithMaxTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(o *options[K, V]) {
		o.maxTTL = ttl
	}
}

func (o *options[K, V]) copyOut(v V) V {
	if o.clone == nil {
		return v
	}
	return o.clone(v)
}

// CloneBytes returns an independent copy of b. It is a ready-made cloner
// for caches holding []byte values.
func CloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
