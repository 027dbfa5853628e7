package attachment

import (
	"context"
	"os"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cached memoizes successful lookups of the wrapped resolver and collapses
// concurrent lookups of the same id into one call. Misses are not cached,
// and a cached path whose file has been removed is looked up again.
type Cached struct {
	next  Resolver
	group singleflight.Group
	mu    sync.RWMutex
	paths map[int]string
}

// NewCached wraps next.
func NewCached(next Resolver) *Cached {
	return &Cached{next: next, paths: make(map[int]string)}
}

// Resolve implements Resolver.
func (c *Cached) Resolve(ctx context.Context, id int) (string, bool) {
	c.mu.RLock()
	path, ok := c.paths[id]
	c.mu.RUnlock()
	if ok {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
		c.Forget(id)
	}

	v, _, _ := c.group.Do(strconv.Itoa(id), func() (any, error) {
		path, ok := c.next.Resolve(ctx, id)
		if !ok {
			return "", nil
		}
		c.mu.Lock()
		c.paths[id] = path
		c.mu.Unlock()
		return path, nil
	})

	path, _ = v.(string)
	return path, path != ""
}

// Forget drops the cached path for id.
func (c *Cached) Forget(id int) {
	c.mu.Lock()
	delete(c.paths, id)
	c.mu.Unlock()
}
