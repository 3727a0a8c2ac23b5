package cache

import (
	"sync"

	"go.uber.org/zap"
)

// nilSlot terminates the recency list.
const nilSlot = -1

// preallocLimit caps how many slots a new RecencyCache reserves up front.
const preallocLimit = 1024

// slot is one entry of the arena. prev points towards the head (more recently
// used), next towards the tail (less recently used).
type slot[K comparable, V any] struct {
	key   K
	value V
	prev  int
	next  int
}

type pair[K comparable, V any] struct {
	key   K
	value V
}

// RecencyCache is a fixed-capacity LRU cache.
//
// Entries live in a slot arena and are linked by slot number, so promotion,
// removal and eviction are O(1) and never chase shared pointers. The index
// maps every live key to its slot; list membership and index contents always
// agree.
//
// A RecencyCache with capacity 0 is valid but stores nothing: Insert hands
// the value straight to the eviction listener and Get always misses.
type RecencyCache[K comparable, V any] struct {
	mu sync.Mutex

	capacity int
	index    map[K]int
	slots    []slot[K, V]
	free     []int
	head     int // most recently used
	tail     int // least recently used

	opts  *options[K, V]
	stats counters
}

// NewRecencyCache creates an empty LRU cache holding at most capacity entries.
func NewRecencyCache[K comparable, V any](capacity int, opts ...Option[K, V]) (*RecencyCache[K, V], error) {
	if capacity < 0 {
		return nil, WrapErrInvalidConfiguration("capacity=%d must not be negative", capacity)
	}

	o := defaultOptions[K, V]()
	for _, opt := range opts {
		opt(o)
	}
	if capacity == 0 {
		o.logger.Warn("recency cache has zero capacity, every insert will be evicted immediately")
	}

	reserve := min(capacity, preallocLimit)
	return &RecencyCache[K, V]{
		capacity: capacity,
		index:    make(map[K]int, reserve),
		slots:    make([]slot[K, V], 0, reserve),
		head:     nilSlot,
		tail:     nilSlot,
		opts:     o,
	}, nil
}

// Insert stores value under key and marks key as most recently used.
//
// Overwriting an existing key never evicts. Inserting a new key into a full
// cache evicts the least recently used entry first.
func (c *RecencyCache[K, V]) Insert(key K, value V) {
	victim, evicted := c.put(key, value)
	if evicted && c.opts.onEvict != nil {
		c.opts.onEvict(victim.key, victim.value)
	}
}

func (c *RecencyCache[K, V]) put(key K, value V) (pair[K, V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.insertions.Inc()

	if i, ok := c.index[key]; ok {
		c.slots[i].value = value
		c.moveToFront(i)
		return pair[K, V]{}, false
	}

	if c.capacity == 0 {
		c.stats.evictions.Inc()
		return pair[K, V]{key: key, value: value}, true
	}

	var (
		victim  pair[K, V]
		evicted bool
	)
	if len(c.index) == c.capacity {
		victim = c.evictTail()
		evicted = true
	}

	i := c.alloc(key, value)
	c.index[key] = i
	c.pushFront(i)
	return victim, evicted
}

// Get returns the value stored under key and marks key as most recently used.
func (c *RecencyCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[key]
	c.stats.lookup(ok)
	if !ok {
		var zero V
		return zero, false
	}

	c.moveToFront(i)
	return c.opts.copyOut(c.slots[i].value), true
}

// Peek returns the value stored under key without touching recency or the
// hit and miss counters.
func (c *RecencyCache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return c.opts.copyOut(c.slots[i].value), true
}

// Remove deletes key and returns the value it held.
func (c *RecencyCache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}

	value := c.slots[i].value
	c.unlink(i)
	delete(c.index, key)
	c.release(i)
	c.stats.removals.Inc()
	return value, true
}

// Purge drops every entry without notifying the eviction listener.
func (c *RecencyCache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	reserve := min(c.capacity, preallocLimit)
	c.index = make(map[K]int, reserve)
	c.slots = make([]slot[K, V], 0, reserve)
	c.free = nil
	c.head, c.tail = nilSlot, nilSlot
}

// Len returns the number of live entries.
func (c *RecencyCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// Capacity returns the bound fixed at construction.
func (c *RecencyCache[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns keys in MRU -> LRU order without touching recency.
func (c *RecencyCache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]K, 0, len(c.index))
	for i := c.head; i != nilSlot; i = c.slots[i].next {
		out = append(out, c.slots[i].key)
	}
	return out
}

// Stats returns a snapshot of the cache counters.
func (c *RecencyCache[K, V]) Stats() Stats {
	return c.stats.snapshot()
}

func (c *RecencyCache[K, V]) evictTail() pair[K, V] {
	i := c.tail
	victim := pair[K, V]{key: c.slots[i].key, value: c.slots[i].value}

	c.unlink(i)
	delete(c.index, victim.key)
	c.release(i)
	c.stats.evictions.Inc()

	if ce := c.opts.logger.Check(zap.DebugLevel, "recency cache evicted least recently used entry"); ce != nil {
		ce.Write(zap.Any("key", victim.key), zap.Int("capacity", c.capacity))
	}
	return victim
}

func (c *RecencyCache[K, V]) alloc(key K, value V) int {
	s := slot[K, V]{key: key, value: value, prev: nilSlot, next: nilSlot}
	if n := len(c.free); n > 0 {
		i := c.free[n-1]
		c.free = c.free[:n-1]
		c.slots[i] = s
		return i
	}
	c.slots = append(c.slots, s)
	return len(c.slots) - 1
}

// release zeroes the slot so the arena keeps no reference to the old key or
// value, then makes it available for reuse.
func (c *RecencyCache[K, V]) release(i int) {
	c.slots[i] = slot[K, V]{prev: nilSlot, next: nilSlot}
	c.free = append(c.free, i)
}

func (c *RecencyCache[K, V]) pushFront(i int) {
	s := &c.slots[i]
	s.prev = nilSlot
	s.next = c.head
	if c.head != nilSlot {
		c.slots[c.head].prev = i
	} else {
		c.tail = i
	}
	c.head = i
}

func (c *RecencyCache[K, V]) unlink(i int) {
	s := &c.slots[i]
	if s.prev != nilSlot {
		c.slots[s.prev].next = s.next
	} else {
		c.head = s.next
	}
	if s.next != nilSlot {
		c.slots[s.next].prev = s.prev
	} else {
		c.tail = s.prev
	}
	s.prev, s.next = nilSlot, nilSlot
}

func (c *RecencyCache[K, V]) moveToFront(i int) {
	if c.head == i {
		return
	}
	c.unlink(i)
	c.pushFront(i)
}
