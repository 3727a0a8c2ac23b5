// Package cache implements two single-process, in-memory memoization engines.
//
// RecencyCache is a bounded LRU cache. An index map gives O(1) key lookup and
// a doubly linked recency list, threaded through a slot arena by integer
// links, gives O(1) promotion and eviction.
//
// ExpiringCache is an unbounded cache whose records carry an absolute expiry.
// Expiration is enforced synchronously: every Get and Insert sweeps expired
// records first, so there is no background goroutine to own or stop.
//
// Both engines are self-synchronized. Each instance holds one mutex for the
// full duration of every operation, so callers may share an instance across
// goroutines without an external lock.
package cache
