// Package cache is the in-process response cache. Entries are keyed by a
// resource class prefix so every mutation of that class can drop them in
// one call.
package cache

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Resource class prefixes.
const (
	ClassPosts      = "posts:"
	ClassComments   = "comments:"
	ClassTags       = "tags:"
	ClassCategories = "categories:"
	ClassReports    = "reports:"
	ClassUsers      = "users:"
)

// Invalidator is the slice of the cache that mutating services depend on.
type Invalidator interface {
	Invalidate(keyOrPrefix string) int
	InvalidateAll()
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Cache is an LRU of serialized responses with per-entry expiry. It is safe
// for concurrent use.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, entry]
	gen uint64
	now func() time.Time
}

// New creates a cache holding at most size entries.
func New(size int) (*Cache, error) {
	l, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, now: time.Now}, nil
}

// Get returns the value stored under key if it has not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, entry{value: value, expiresAt: c.now().Add(ttl)})
}

// Generation changes on every invalidation. Read it before computing a
// value and pass it to SetIfUnchanged.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gen
}

// SetIfUnchanged stores value under key unless an invalidation happened
// after gen was read. It reports whether the value was stored.
func (c *Cache) SetIfUnchanged(key string, value []byte, ttl time.Duration, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return false
	}
	c.lru.Add(key, entry{value: value, expiresAt: c.now().Add(ttl)})
	return true
}

// Invalidate removes key and every entry whose key starts with it, returning
// how many entries were dropped.
func (c *Cache) Invalidate(keyOrPrefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	n := 0
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, keyOrPrefix) {
			c.lru.Remove(k)
			n++
		}
	}
	return n
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.lru.Purge()
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

// Key derives a cache key from a class, a request path and its query. Query
// parameters are sorted so equivalent requests share an entry.
func Key(class, path string, query url.Values) string {
	var b strings.Builder
	b.WriteString(class)
	b.WriteString(path)
	if len(query) == 0 {
		return b.String()
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteByte('?')
	for i, k := range keys {
		vals := append([]string(nil), query[k]...)
		sort.Strings(vals)
		for j, v := range vals {
			if i > 0 || j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// Nop is an Invalidator that does nothing.
type Nop struct{}

func (Nop) Invalidate(string) int { return 0 }
func (Nop) InvalidateAll()        {}
