package cache

import (
	"sync"
	"time"
)

type record[V any] struct {
	value  V
	expiry time.Time
}

// ExpiringCache is an unbounded cache whose records expire after a
// per-insert TTL.
//
// A record is treated as absent as soon as now >= expiry. Get and Insert
// sweep every expired record before doing anything else, which costs O(n)
// per call but means an expired value can never be served. The TTL ceiling
// (DefaultMaxTTL unless WithMaxTTL is given) bounds how long a dead record
// can sit in memory while nobody touches the cache.
type ExpiringCache[K comparable, V any] struct {
	mu      sync.Mutex
	records map[K]record[V]

	opts  *options[K, V]
	stats counters
}

// NewExpiringCache creates an empty ExpiringCache.
func NewExpiringCache[K comparable, V any](opts ...Option[K, V]) (*ExpiringCache[K, V], error) {
	o := defaultOptions[K, V]()
	for _, opt := range opts {
		opt(o)
	}
	if o.maxTTL <= 0 {
		return nil, WrapErrInvalidConfiguration("maxTTL=%s must be positive", o.maxTTL)
	}

	return &ExpiringCache[K, V]{
		records: make(map[K]record[V]),
		opts:    o,
	}, nil
}

// Insert stores value under key until ttl has elapsed, replacing any
// previous record. ttl must lie in [0, MaxTTL()]; anything else fails with
// ErrInvalidConfiguration and leaves the cache untouched. A zero ttl stores
// a record that the accompanying sweep removes at once.
func (c *ExpiringCache[K, V]) Insert(key K, value V, ttl time.Duration) error {
	if ttl < 0 || ttl > c.opts.maxTTL {
		return WrapErrInvalidConfiguration("ttl=%s outside [0, %s]", ttl, c.opts.maxTTL)
	}

	expired := c.put(key, value, ttl)
	c.notify(expired)
	return nil
}

func (c *ExpiringCache[K, V]) put(key K, value V, ttl time.Duration) []pair[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.clock.Now()
	c.records[key] = record[V]{value: value, expiry: now.Add(ttl)}
	c.stats.insertions.Inc()
	return c.sweepLocked(now)
}

// Get returns the value stored under key if it has not expired.
func (c *ExpiringCache[K, V]) Get(key K) (V, bool) {
	value, ok, expired := c.lookup(key)
	c.notify(expired)
	return value, ok
}

func (c *ExpiringCache[K, V]) lookup(key K) (V, bool, []pair[K, V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expired := c.sweepLocked(c.opts.clock.Now())

	r, ok := c.records[key]
	c.stats.lookup(ok)
	if !ok {
		var zero V
		return zero, false, expired
	}
	return c.opts.copyOut(r.value), true, expired
}

// Peek returns the value stored under key if it has not expired. It neither
// sweeps nor counts a hit or miss.
func (c *ExpiringCache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.records[key]
	if !ok || !c.opts.clock.Now().Before(r.expiry) {
		var zero V
		return zero, false
	}
	return c.opts.copyOut(r.value), true
}

// Remove deletes key whether or not its record has expired, and returns the
// value it held.
func (c *ExpiringCache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.records[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(c.records, key)
	c.stats.removals.Inc()
	return r.value, true
}

// Len returns the number of stored records, including expired ones that
// the next sweep has yet to remove.
func (c *ExpiringCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// MaxTTL returns the largest ttl Insert accepts.
func (c *ExpiringCache[K, V]) MaxTTL() time.Duration {
	return c.opts.maxTTL
}

// Stats returns a snapshot of the cache counters.
func (c *ExpiringCache[K, V]) Stats() Stats {
	return c.stats.snapshot()
}

func (c *ExpiringCache[K, V]) notify(expired []pair[K, V]) {
	if c.opts.onEvict == nil {
		return
	}
	for _, p := range expired {
		c.opts.onEvict(p.key, p.value)
	}
}
