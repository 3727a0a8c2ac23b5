package cache

import (
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// sweepLocked removes every record whose expiry is not after now.
//
// This is a full O(n) scan on every call. A heap or timing wheel would make
// it cheaper when few records are due, but nothing here needs that yet.
// The returned slice is only filled when an eviction listener is set.
func (c *ExpiringCache[K, V]) sweepLocked(now time.Time) []pair[K, V] {
	var expired []pair[K, V]
	removed := 0
	for key, r := range c.records {
		if now.Before(r.expiry) {
			continue
		}
		delete(c.records, key)
		removed++
		if c.opts.onEvict != nil {
			expired = append(expired, pair[K, V]{key: key, value: r.value})
		}
	}

	if removed > 0 {
		c.stats.expirations.Add(int64(removed))
		if ce := c.opts.logger.Check(zap.DebugLevel, "expiring cache swept expired records"); ce != nil {
			ce.Write(zap.Int("removed", removed), zap.Int("remaining", len(c.records)))
		}
	}
	return expired
}

// verify checks that the recency list and the index agree: every indexed key
// sits on the list exactly once, links are symmetric, the list has no cycle,
// and every slot is either live or free.
func (c *RecencyCache[K, V]) verify() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.index) > c.capacity {
		return errors.Newf("size %d exceeds capacity %d", len(c.index), c.capacity)
	}
	if len(c.index)+len(c.free) != len(c.slots) {
		return errors.Newf("%d live + %d free slots != %d allocated", len(c.index), len(c.free), len(c.slots))
	}

	seen := 0
	prev := nilSlot
	for i := c.head; i != nilSlot; i = c.slots[i].next {
		if seen >= len(c.index) {
			return errors.Newf("recency list longer than index (%d entries), cycle suspected", len(c.index))
		}
		s := c.slots[i]
		if s.prev != prev {
			return errors.Newf("slot %d has prev %d, want %d", i, s.prev, prev)
		}
		if j, ok := c.index[s.key]; !ok || j != i {
			return errors.Newf("slot %d holds key %v which the index maps to %d (present=%t)", i, s.key, j, ok)
		}
		prev = i
		seen++
	}
	if prev != c.tail {
		return errors.Newf("tail is %d, list ends at %d", c.tail, prev)
	}
	if seen != len(c.index) {
		return errors.Newf("recency list has %d entries, index has %d", seen, len(c.index))
	}
	return nil
}
