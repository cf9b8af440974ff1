package promptreg

import (
	"context"
	"sync"
	"time"
)

// Cached decorates a Registry with a per-(name,label) TTL cache. The maxAge
// argument of each GetPrompt call decides how stale a cached entry may be,
// so callers keep control of their own freshness budget.
type Cached struct {
	inner Registry

	mu      sync.Mutex
	entries map[string]cacheEntry

	now func() time.Time
}

type cacheEntry struct {
	spec      *PromptSpec
	fetchedAt time.Time
}

func NewCached(inner Registry) *Cached {
	return &Cached{
		inner:   inner,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *Cached) GetPrompt(ctx context.Context, name, label string, maxAge time.Duration) (*PromptSpec, error) {
	key := name + "\x00" + label

	if maxAge > 0 {
		c.mu.Lock()
		if e, ok := c.entries[key]; ok && c.now().Sub(e.fetchedAt) < maxAge {
			c.mu.Unlock()
			return e.spec, nil
		}
		c.mu.Unlock()
	}

	spec, err := c.inner.GetPrompt(ctx, name, label, maxAge)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{spec: spec, fetchedAt: c.now()}
	c.mu.Unlock()

	return spec, nil
}

var _ Registry = (*Cached)(nil)
