package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type ExpiringCacheSuite struct {
	suite.Suite

	clock   *fakeClock
	expired []string
	cache   *ExpiringCache[string, string]
}

func (s *ExpiringCacheSuite) SetupTest() {
	s.clock = newFakeClock()
	s.expired = nil

	c, err := NewExpiringCache[string, string](
		WithClock[string, string](s.clock),
		WithEvictionListener[string, string](func(k string, _ string) {
			s.expired = append(s.expired, k)
		}),
	)
	s.Require().NoError(err)
	s.cache = c
}

func (s *ExpiringCacheSuite) TestExpiresInOrder() {
	s.Require().NoError(s.cache.Insert("k1", "v1", 2*time.Second))
	s.Require().NoError(s.cache.Insert("k2", "v2", 1*time.Second))

	v, ok := s.cache.Get("k1")
	s.True(ok)
	s.Equal("v1", v)
	v, ok = s.cache.Get("k2")
	s.True(ok)
	s.Equal("v2", v)

	s.clock.Advance(time.Second)
	v, ok = s.cache.Get("k1")
	s.True(ok)
	s.Equal("v1", v)
	_, ok = s.cache.Get("k2")
	s.False(ok)

	s.clock.Advance(time.Second)
	_, ok = s.cache.Get("k1")
	s.False(ok)

	s.Equal([]string{"k2", "k1"}, s.expired)
	s.EqualValues(2, s.cache.Stats().Expirations)
}

func (s *ExpiringCacheSuite) TestExpiryIsHardDeadline() {
	s.Require().NoError(s.cache.Insert("k", "v", time.Second))

	s.clock.Advance(time.Second - time.Nanosecond)
	_, ok := s.cache.Get("k")
	s.True(ok)

	s.clock.Advance(time.Nanosecond)
	_, ok = s.cache.Get("k")
	s.False(ok)
	s.Equal(0, s.cache.Len())
}

func (s *ExpiringCacheSuite) TestTTLAboveMaxRejected() {
	err := s.cache.Insert("k", "v", 61*time.Second)
	s.ErrorIs(err, ErrInvalidConfiguration)
	s.Equal(ErrInvalidConfiguration.code(), Code(err))
	s.Equal(0, s.cache.Len())

	_, ok := s.cache.Get("k")
	s.False(ok)
}

func (s *ExpiringCacheSuite) TestNegativeTTLRejected() {
	err := s.cache.Insert("k", "v", -time.Second)
	s.ErrorIs(err, ErrInvalidConfiguration)
	s.Equal(0, s.cache.Len())
}

func (s *ExpiringCacheSuite) TestMaxTTLAccepted() {
	s.NoError(s.cache.Insert("k", "v", DefaultMaxTTL))
	s.clock.Advance(DefaultMaxTTL - time.Second)
	_, ok := s.cache.Get("k")
	s.True(ok)
}

func (s *ExpiringCacheSuite) TestZeroTTLIsSweptImmediately() {
	s.NoError(s.cache.Insert("k", "v", 0))
	s.Equal(0, s.cache.Len())
	s.Equal([]string{"k"}, s.expired)

	_, ok := s.cache.Get("k")
	s.False(ok)
}

func (s *ExpiringCacheSuite) TestInsertSweepsOthers() {
	s.Require().NoError(s.cache.Insert("old", "v", time.Second))
	s.clock.Advance(2 * time.Second)
	// Nothing has touched the cache yet, the dead record is still stored.
	s.Equal(1, s.cache.Len())

	s.Require().NoError(s.cache.Insert("new", "v", time.Second))
	s.Equal(1, s.cache.Len())
	s.Equal([]string{"old"}, s.expired)
}

func (s *ExpiringCacheSuite) TestOverwriteRefreshesExpiry() {
	s.Require().NoError(s.cache.Insert("k", "a", time.Second))
	s.clock.Advance(500 * time.Millisecond)
	s.Require().NoError(s.cache.Insert("k", "b", time.Second))
	s.clock.Advance(700 * time.Millisecond)

	v, ok := s.cache.Get("k")
	s.True(ok)
	s.Equal("b", v)
}

func (s *ExpiringCacheSuite) TestRemoveIgnoresExpiry() {
	s.Require().NoError(s.cache.Insert("k", "v", time.Second))
	s.clock.Advance(5 * time.Second)

	v, ok := s.cache.Remove("k")
	s.True(ok)
	s.Equal("v", v)

	_, ok = s.cache.Remove("k")
	s.False(ok)
	s.Empty(s.expired)
	s.EqualValues(1, s.cache.Stats().Removals)
}

func (s *ExpiringCacheSuite) TestPeekHonoursExpiryWithoutSweeping() {
	s.Require().NoError(s.cache.Insert("k", "v", time.Second))

	v, ok := s.cache.Peek("k")
	s.True(ok)
	s.Equal("v", v)

	s.clock.Advance(time.Second)
	_, ok = s.cache.Peek("k")
	s.False(ok)
	// The expired record stays until the next Get or Insert sweeps it.
	s.Equal(1, s.cache.Len())
	s.Empty(s.expired)

	stats := s.cache.Stats()
	s.Zero(stats.Hits)
	s.Zero(stats.Misses)
}

func TestExpiringCacheSuite(t *testing.T) {
	suite.Run(t, new(ExpiringCacheSuite))
}

func TestExpiringCacheMaxTTL(t *testing.T) {
	c, err := NewExpiringCache[string, int](WithMaxTTL[string, int](time.Minute * 5))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, c.MaxTTL())
	assert.NoError(t, c.Insert("k", 1, 61*time.Second))

	_, err = NewExpiringCache[string, int](WithMaxTTL[string, int](0))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestExpiringCacheWallClock(t *testing.T) {
	c, err := NewExpiringCache[string, string]()
	require.NoError(t, err)

	require.NoError(t, c.Insert("k", "v", 30*time.Millisecond))
	_, ok := c.Get("k")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestExpiringCacheConcurrentAccess(t *testing.T) {
	clock := newFakeClock()
	c, err := NewExpiringCache[string, int](WithClock[string, int](clock))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", i%32)
				assert.NoError(t, c.Insert(key, i, time.Duration(i%3)*time.Second))
				c.Get(key)
				if i%50 == 0 {
					clock.Advance(time.Second)
				}
				if i%7 == w {
					c.Remove(key)
				}
			}
		}(w)
	}
	wg.Wait()

	// Everything still stored must be unexpired.
	clock.Advance(3 * time.Second)
	for i := 0; i < 32; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.False(t, ok)
	}
	assert.Equal(t, 0, c.Len())
}
