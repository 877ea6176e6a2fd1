package resolver

import (
	"context"
	"sync"

	"github.com/Iron-Ham/vidparse/internal/taskqueue"
)

// Cache memoizes successful resolutions by link for the life of the process.
// Failures are never cached, so a retried link always reaches the service.
type Cache struct {
	next taskqueue.Resolver

	mu      sync.Mutex
	entries map[string]taskqueue.Result
	hits    int
	misses  int
}

var _ taskqueue.Resolver = (*Cache)(nil)

// NewCache wraps next with an in-memory result cache.
func NewCache(next taskqueue.Resolver) *Cache {
	return &Cache{
		next:    next,
		entries: make(map[string]taskqueue.Result),
	}
}

// Resolve returns the cached result for link or delegates to the wrapped
// resolver. Concurrent misses for the same link may each call through.
func (c *Cache) Resolve(ctx context.Context, link string) (*taskqueue.Result, error) {
	c.mu.Lock()
	if r, ok := c.entries[link]; ok {
		c.hits++
		c.mu.Unlock()
		return &r, nil
	}
	c.misses++
	c.mu.Unlock()

	result, err := c.next.Resolve(ctx, link)
	if err != nil || result == nil {
		return result, err
	}

	c.mu.Lock()
	c.entries[link] = *result
	c.mu.Unlock()

	cp := *result
	return &cp, nil
}

// Len returns the number of cached links.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
