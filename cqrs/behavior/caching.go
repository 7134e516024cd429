package behavior

import (
	"context"
	"sync"
	"time"

	"github.com/deeplines/buildingblocks/cqrs"
)

type cacheEntry struct {
	storedAt time.Time
	value    any
}

// Caching returns memoized results for requests that carry a cache key.
// Entries expire after the configured TTL. State is per-instance and
// process-lifetime; keys are independent of each other.
type Caching struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCaching creates the caching behavior with the given entry TTL.
func NewCaching(ttl time.Duration) *Caching {
	return &Caching{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (b *Caching) Handle(ctx context.Context, req cqrs.Request, next cqrs.Next) (any, error) {
	rc := req.Context()
	if rc == nil || rc.CacheKey == "" {
		return next(ctx)
	}
	key := rc.CacheKey

	b.mu.Lock()
	entry, ok := b.entries[key]
	if ok && b.now().Sub(entry.storedAt) < b.ttl {
		b.mu.Unlock()
		return entry.value, nil
	}
	b.mu.Unlock()

	result, err := next(ctx)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.entries[key] = cacheEntry{storedAt: b.now(), value: result}
	b.mu.Unlock()

	return result, nil
}

// Invalidate drops the entry for the given key.
func (b *Caching) Invalidate(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
}
