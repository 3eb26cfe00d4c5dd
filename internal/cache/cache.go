package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTTL      = 5 * time.Minute
	DefaultCapacity = 1000

	// Share of entries dropped when the cache is still full after an
	// expiry purge, oldest first.
	evictShare = 0.2
)

// Key identifies one cached query result. Scope is the id whose writes
// invalidate the entry (provider, subject or booking id); Range narrows a
// key to a date window when the same scope is queried for several windows.
type Key struct {
	Kind  string
	Scope string
	Range string
}

type entry struct {
	value      any
	insertedAt time.Time
}

// Cache is a read-through TTL cache. It is process-local shared state:
// every mutation runs under the mutex, reads return the stored snapshot.
// Construct one instance in main and pass it down; it has no bearing on
// correctness and must never sit in front of commit-time validation reads.
type Cache struct {
	mu       sync.Mutex
	entries  map[Key]entry
	ttl      time.Duration
	capacity int
	now      func() time.Time
	logger   *zap.Logger
}

func New(ttl time.Duration, capacity int, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries:  make(map[Key]entry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		logger:   logger,
	}
}

// Get returns the live value for key, if any. An entry whose age has
// reached the TTL is logically absent.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with a fresh insertion timestamp. Expired
// entries are purged first; if the cache is still at capacity the oldest
// fifth is evicted.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeExpiredLocked()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[key] = entry{value: value, insertedAt: c.now()}
}

// GetOrLoad returns the cached value for key or executes load, stores its
// result and returns it. Loader errors pass through unstored.
func (c *Cache) GetOrLoad(ctx context.Context, key Key, load func(context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.Set(key, v)
	return v, nil
}

// InvalidateScope drops every entry whose key scope matches and returns
// the number removed. Writers call this synchronously before returning.
func (c *Cache) InvalidateScope(scope string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if k.Scope == scope {
			delete(c.entries, k)
			n++
		}
	}
	if n > 0 {
		c.logger.Debug("cache scope invalidated", zap.String("scope", scope), zap.Int("entries", n))
	}
	return n
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) purgeExpiredLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.insertedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) evictOldestLocked() {
	drop := int(float64(c.capacity) * evictShare)
	if drop < 1 {
		drop = 1
	}

	type aged struct {
		key Key
		at  time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, at: e.insertedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })

	if drop > len(all) {
		drop = len(all)
	}
	for _, a := range all[:drop] {
		delete(c.entries, a.key)
	}
	c.logger.Debug("cache evicted oldest entries", zap.Int("entries", drop))
}
