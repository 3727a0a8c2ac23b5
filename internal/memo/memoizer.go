package memo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"memobox/internal/cache"
	"memobox/internal/log"
	"memobox/internal/metrics"
)

// Memoizer caches the results of one function, keyed by its arguments.
// A Memoizer is owned by the Registry it was created in.
type Memoizer[V any] struct {
	name    string
	backend backend[V]
	group   singleflight.Group
	logger  *zap.Logger

	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	entries   prometheus.Gauge
}

// result boxes V so a nil interface value survives the trip through singleflight.
type result[V any] struct {
	value V
}

// NewLRU registers a memoizer named name that keeps the results of the
// capacity most recently used argument lists.
func NewLRU[V any](r *Registry, name string, capacity int, opts ...cache.Option[string, V]) (*Memoizer[V], error) {
	m := &Memoizer[V]{name: name, logger: r.logger.With(log.FieldCache(name))}

	opts = append([]cache.Option[string, V]{
		cache.WithLogger[string, V](m.logger),
		cache.WithEvictionListener[string, V](m.onEvict),
	}, opts...)
	c, err := cache.NewRecencyCache[string, V](capacity, opts...)
	if err != nil {
		return nil, err
	}
	m.backend = lruBackend[V]{c: c}

	if err := r.register(name, m); err != nil {
		return nil, err
	}
	m.bindMetrics()
	return m, nil
}

// NewExpiring registers a memoizer named name whose results expire ttl after
// they were computed. ttl must lie within the engine's TTL ceiling.
func NewExpiring[V any](r *Registry, name string, ttl time.Duration, opts ...cache.Option[string, V]) (*Memoizer[V], error) {
	m := &Memoizer[V]{name: name, logger: r.logger.With(log.FieldCache(name))}

	opts = append([]cache.Option[string, V]{
		cache.WithLogger[string, V](m.logger),
		cache.WithEvictionListener[string, V](m.onEvict),
	}, opts...)
	c, err := cache.NewExpiringCache[string, V](opts...)
	if err != nil {
		return nil, err
	}
	if ttl < 0 || ttl > c.MaxTTL() {
		return nil, cache.WrapErrInvalidConfiguration("memo %s: ttl=%s outside [0, %s]", name, ttl, c.MaxTTL())
	}
	m.backend = expiringBackend[V]{c: c, ttl: ttl}

	if err := r.register(name, m); err != nil {
		return nil, err
	}
	m.bindMetrics()
	return m, nil
}

func (m *Memoizer[V]) bindMetrics() {
	m.hits = metrics.CacheHits.WithLabelValues(m.name)
	m.misses = metrics.CacheMisses.WithLabelValues(m.name)
	m.evictions = metrics.CacheEvictions.WithLabelValues(m.name)
	m.entries = metrics.CacheEntries.WithLabelValues(m.name, m.backend.kind())
}

// Do returns the cached result for args, or runs compute, caches its result
// and returns it. Concurrent misses on the same args share one compute call.
// Errors from compute are returned to every waiting caller and never cached.
func (m *Memoizer[V]) Do(compute func() (V, error), args ...any) (V, error) {
	var zero V
	key, err := Key(args...)
	if err != nil {
		return zero, err
	}

	if v, ok := m.backend.get(key); ok {
		m.hits.Inc()
		return v, nil
	}
	m.misses.Inc()

	res, err, _ := m.group.Do(key, func() (any, error) {
		// A flight that finished between our miss and this call already stored
		// the value. peek keeps this second look out of the hit and miss counts.
		if v, ok := m.backend.peek(key); ok {
			return result[V]{value: v}, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		if err := m.backend.insert(key, v); err != nil {
			return nil, err
		}
		m.entries.Set(float64(m.backend.len()))
		return result[V]{value: v}, nil
	})
	if err != nil {
		return zero, err
	}
	return res.(result[V]).value, nil
}

// Forget drops the cached result for args and reports whether one existed.
// It fails only when args cannot be turned into a key.
func (m *Memoizer[V]) Forget(args ...any) (bool, error) {
	key, err := Key(args...)
	if err != nil {
		return false, err
	}
	ok := m.backend.remove(key)
	m.entries.Set(float64(m.backend.len()))
	return ok, nil
}

// Name returns the name the memoizer was registered under.
func (m *Memoizer[V]) Name() string { return m.name }

// Kind returns KindLRU or KindExpiring.
func (m *Memoizer[V]) Kind() string { return m.backend.kind() }

// Len returns the number of cached results.
func (m *Memoizer[V]) Len() int { return m.backend.len() }

// Stats returns the counters of the underlying engine.
func (m *Memoizer[V]) Stats() cache.Stats { return m.backend.stats() }

func (m *Memoizer[V]) onEvict(key string, _ V) {
	if m.evictions != nil {
		m.evictions.Inc()
		m.entries.Set(float64(m.backend.len()))
	}
	if ce := m.logger.Check(zap.DebugLevel, "memoized result dropped"); ce != nil {
		ce.Write(zap.String("key", key))
	}
}
