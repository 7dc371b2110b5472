// Package cache is a small TTL cache capability handed to components that
// perform repeated external lookups. It holds no domain invariants; eviction
// is purely time-based.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache wraps a concurrency-safe in-memory store with a default TTL.
type Cache struct {
	c *gocache.Cache
}

// New builds a cache whose entries expire after defaultTTL. Expired entries
// are swept every cleanup interval.
func New(defaultTTL, cleanup time.Duration) *Cache {
	return &Cache{c: gocache.New(defaultTTL, cleanup)}
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache) Get(key string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	return c.c.Get(key)
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	if c == nil {
		return
	}
	c.c.Set(key, value, gocache.DefaultExpiration)
}

// SetTTL stores value under key with an explicit TTL.
func (c *Cache) SetTTL(key string, value interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	c.c.Set(key, value, ttl)
}

// Flush drops every entry. Used by tests.
func (c *Cache) Flush() {
	if c == nil {
		return
	}
	c.c.Flush()
}
