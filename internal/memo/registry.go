// Package memo memoizes function results on top of the cache engines.
//
// A Registry is built once at startup and handed to the code that memoizes.
// Each memoized function gets its own named Memoizer, backed by exactly one
// engine instance, so results of unrelated functions can never collide.
package memo

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"memobox/internal/cache"
	"memobox/internal/log"
	"memobox/internal/metrics"
)

// entry is the type-erased view the registry keeps of a Memoizer.
type entry interface {
	Kind() string
	Len() int
	Stats() cache.Stats
}

// Registry owns the memoizers of a process, one per memoized function.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	logger  *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger handed down to every memoizer.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRegisterer registers the cache metrics on reg.
func WithRegisterer(reg prometheus.Registerer) RegistryOption {
	return func(r *Registry) {
		if reg != nil {
			metrics.Register(reg)
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: make(map[string]entry),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(log.FieldComponent("memo"))
	return r
}

func (r *Registry) register(name string, e entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; ok {
		return cache.WrapErrCacheExists(name)
	}
	r.entries[name] = e
	r.logger.Info("memoized cache registered", log.FieldCache(name), zap.String("kind", e.Kind()))
	return nil
}

// Unregister forgets the memoizer registered under name and drops its metrics.
// The Memoizer itself keeps working for anyone still holding it.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return cache.WrapErrCacheNotFound(name)
	}
	delete(r.entries, name)
	metrics.CleanupCache(name)
	return nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.entries)
	sort.Strings(names)
	return names
}

// Stats returns the engine counters of the memoizer registered under name.
func (r *Registry) Stats(name string) (cache.Stats, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return cache.Stats{}, cache.WrapErrCacheNotFound(name)
	}
	return e.Stats(), nil
}

// Len returns the number of registered memoizers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
