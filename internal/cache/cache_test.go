package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

func newTestCache(ttl time.Duration, capacity int) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	c := New(ttl, capacity, nil)
	c.now = clock.Now
	return c, clock
}

func TestCache_HitWithinTTL(t *testing.T) {
	c, clock := newTestCache(5*time.Minute, 10)
	key := Key{Kind: "schedule", Scope: "p1"}

	c.Set(key, "snapshot")

	clock.Advance(4 * time.Minute)
	v, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "snapshot", v)
}

func TestCache_EntryExpiresAtTTL(t *testing.T) {
	c, clock := newTestCache(5*time.Minute, 10)
	key := Key{Kind: "schedule", Scope: "p1"}

	c.Set(key, "snapshot")

	// Logically absent exactly when age reaches the TTL.
	clock.Advance(5 * time.Minute)
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestCache_GetOrLoadLoadsOnce(t *testing.T) {
	c, _ := newTestCache(5*time.Minute, 10)
	key := Key{Kind: "blocked-instants", Scope: "p1"}
	loads := 0

	load := func(ctx context.Context) (any, error) {
		loads++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad(context.Background(), key, load)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, loads)
}

func TestCache_GetOrLoadErrorNotStored(t *testing.T) {
	c, _ := newTestCache(5*time.Minute, 10)
	key := Key{Kind: "blocked-instants", Scope: "p1"}

	_, err := c.GetOrLoad(context.Background(), key, func(ctx context.Context) (any, error) {
		return nil, fmt.Errorf("store is down")
	})
	require.Error(t, err)

	_, ok := c.Get(key)
	assert.False(t, ok, "failed loads leave no entry")
}

func TestCache_InvalidatedEntryMissesNextRead(t *testing.T) {
	c, _ := newTestCache(5*time.Minute, 10)
	key := Key{Kind: "subject-bookings", Scope: "s1"}
	loads := 0
	load := func(ctx context.Context) (any, error) {
		loads++
		return loads, nil
	}

	v, err := c.GetOrLoad(context.Background(), key, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	removed := c.InvalidateScope("s1")
	assert.Equal(t, 1, removed)

	v, err = c.GetOrLoad(context.Background(), key, load)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "invalidation forces a fresh underlying query")
}

func TestCache_InvalidateScopeLeavesOtherScopes(t *testing.T) {
	c, _ := newTestCache(5*time.Minute, 10)

	c.Set(Key{Kind: "schedule", Scope: "p1"}, 1)
	c.Set(Key{Kind: "blocked-instants", Scope: "p1", Range: "a"}, 2)
	c.Set(Key{Kind: "blocked-instants", Scope: "p1", Range: "b"}, 3)
	c.Set(Key{Kind: "schedule", Scope: "p2"}, 4)

	removed := c.InvalidateScope("p1")
	assert.Equal(t, 3, removed)

	_, ok := c.Get(Key{Kind: "schedule", Scope: "p2"})
	assert.True(t, ok)
}

func TestCache_InsertPurgesExpiredFirst(t *testing.T) {
	c, clock := newTestCache(5*time.Minute, 3)

	c.Set(Key{Kind: "k", Scope: "a"}, 1)
	c.Set(Key{Kind: "k", Scope: "b"}, 2)
	clock.Advance(6 * time.Minute)

	// Both entries are expired, so the insert purges them instead of
	// evicting live ones.
	c.Set(Key{Kind: "k", Scope: "c"}, 3)
	assert.Equal(t, 1, c.Len())
}

func TestCache_EvictsOldestFifthAtCapacity(t *testing.T) {
	c, clock := newTestCache(time.Hour, 10)

	for i := 0; i < 10; i++ {
		c.Set(Key{Kind: "k", Scope: fmt.Sprintf("s%02d", i)}, i)
		clock.Advance(time.Second)
	}
	require.Equal(t, 10, c.Len())

	c.Set(Key{Kind: "k", Scope: "s10"}, 10)

	// 20% of capacity 10 = the two oldest entries.
	_, ok := c.Get(Key{Kind: "k", Scope: "s00"})
	assert.False(t, ok)
	_, ok = c.Get(Key{Kind: "k", Scope: "s01"})
	assert.False(t, ok)
	_, ok = c.Get(Key{Kind: "k", Scope: "s02"})
	assert.True(t, ok)
	_, ok = c.Get(Key{Kind: "k", Scope: "s10"})
	assert.True(t, ok)
	assert.Equal(t, 9, c.Len())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(time.Minute, 50)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				scope := fmt.Sprintf("s%d", j%10)
				key := Key{Kind: "k", Scope: scope}
				switch j % 3 {
				case 0:
					c.Set(key, j)
				case 1:
					c.Get(key)
				default:
					c.InvalidateScope(scope)
				}
			}
		}(i)
	}
	wg.Wait()
}
