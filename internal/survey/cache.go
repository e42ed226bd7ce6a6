package survey

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache holds normalized tables keyed by source identity. Concurrent loads of
// one key share a single build. A Cache is owned by whoever hosts the session
// (a CLI run, a server); there is no process-wide instance.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Table
	group   singleflight.Group
	hits    int
	misses  int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: map[string]*Table{}}
}

// Get returns the cached table for key.
func (c *Cache) Get(key string) (*Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.entries[key]
	return t, ok
}

// Do returns the table cached under key, or builds and stores it. hit is false
// only for the call that ran build; callers that waited on another caller's
// build, or found the entry stored, get hit true. Failed builds are not cached.
func (c *Cache) Do(key string, build func() (*Table, error)) (t *Table, hit bool, err error) {
	c.mu.Lock()
	if t, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return t, true, nil
	}
	c.mu.Unlock()

	built := false
	v, err, _ := c.group.Do(key, func() (any, error) {
		// a flight that finished between the lookup above and this call has
		// already stored the entry
		if t, ok := c.Get(key); ok {
			return t, nil
		}
		t, err := build()
		if err != nil {
			return nil, err
		}
		built = true
		c.mu.Lock()
		c.entries[key] = t
		c.misses++
		c.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, false, err
	}
	if !built {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
	}
	return v.(*Table), !built, nil
}

// Invalidate drops one entry and reports whether it existed.
func (c *Cache) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// InvalidatePrefix drops every entry whose key starts with prefix.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]*Table{}
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the cached keys in sorted order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats returns hit and build counts since creation.
func (c *Cache) Stats() (hits, builds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
