package cache

import (
	"go.uber.org/atomic"
)

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Insertions  int64
	Evictions   int64
	Expirations int64
	Removals    int64
}

// HitRatio returns Hits / (Hits + Misses), or 0 before the first lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type counters struct {
	hits        atomic.Int64
	misses      atomic.Int64
	insertions  atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64
	removals    atomic.Int64
}

func (c *counters) lookup(hit bool) {
	if hit {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Insertions:  c.insertions.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
		Removals:    c.removals.Load(),
	}
}
