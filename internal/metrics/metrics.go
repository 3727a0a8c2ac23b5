// Package metrics declares the Prometheus collectors exported by memoized caches.
package metrics

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "memobox"
	subsystem = "cache"

	cacheNameLabelName = "cache"
	cacheKindLabelName = "kind"
)

var (
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "hits_total",
			Help:      "count of lookups served from a memoized cache",
		}, []string{cacheNameLabelName})

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "misses_total",
			Help:      "count of lookups that had to compute the result",
		}, []string{cacheNameLabelName})

	CacheEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "evictions_total",
			Help:      "count of entries dropped by LRU eviction or expiry",
		}, []string{cacheNameLabelName})

	CacheEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "entries",
			Help:      "number of entries currently stored, expired records pending a sweep included",
		}, []string{cacheNameLabelName, cacheKindLabelName})
)

// Register registers the cache collectors on r. The same collectors may be
// registered on any number of registerers, and registering them twice on one
// registerer is a no-op. Any other registration failure panics.
func Register(r prometheus.Registerer) {
	for _, c := range []prometheus.Collector{CacheHits, CacheMisses, CacheEvictions, CacheEntries} {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			panic(err)
		}
	}
}

// CleanupCache drops every series labelled with the given cache name.
func CleanupCache(name string) {
	labels := prometheus.Labels{cacheNameLabelName: name}
	CacheHits.DeletePartialMatch(labels)
	CacheMisses.DeletePartialMatch(labels)
	CacheEvictions.DeletePartialMatch(labels)
	CacheEntries.DeletePartialMatch(labels)
}
