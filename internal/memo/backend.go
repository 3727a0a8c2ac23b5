package memo

import (
	"time"

	"memobox/internal/cache"
)

const (
	KindLRU      = "lru"
	KindExpiring = "expiring"
)

// backend adapts one cache engine to the uniform shape the memoizer needs.
type backend[V any] interface {
	get(key string) (V, bool)
	peek(key string) (V, bool)
	insert(key string, value V) error
	remove(key string) bool
	len() int
	stats() cache.Stats
	kind() string
}

type lruBackend[V any] struct {
	c *cache.RecencyCache[string, V]
}

func (b lruBackend[V]) get(key string) (V, bool)  { return b.c.Get(key) }
func (b lruBackend[V]) peek(key string) (V, bool) { return b.c.Peek(key) }

func (b lruBackend[V]) insert(key string, value V) error {
	b.c.Insert(key, value)
	return nil
}

func (b lruBackend[V]) remove(key string) bool {
	_, ok := b.c.Remove(key)
	return ok
}

func (b lruBackend[V]) len() int { return b.c.Len() }
func (b lruBackend[V]) stats() cache.Stats { return b.c.Stats() }
func (b lruBackend[V]) kind() string { return KindLRU }

type expiringBackend[V any] struct {
	c   *cache.ExpiringCache[string, V]
	ttl time.Duration
}

func (b expiringBackend[V]) get(key string) (V, bool)  { return b.c.Get(key) }
func (b expiringBackend[V]) peek(key string) (V, bool) { return b.c.Peek(key) }

func (b expiringBackend[V]) insert(key string, value V) error {
	return b.c.Insert(key, value, b.ttl)
}

func (b expiringBackend[V]) remove(key string) bool {
	_, ok := b.c.Remove(key)
	return ok
}

func (b expiringBackend[V]) len() int { return b.c.Len() }
func (b expiringBackend[V]) stats() cache.Stats { return b.c.Stats() }
func (b expiringBackend[V]) kind() string { return KindExpiring }
