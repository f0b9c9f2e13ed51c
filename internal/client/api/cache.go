package api

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// responseCache keeps raw GET bodies keyed by endpoint. A mutating call
// invalidates it both when it starts and when it completes, and a GET body
// is stored only if no invalidation happened while it was in flight, so a
// read never observes data older than the last write made through the same
// client.
type responseCache struct {
	lru *expirable.LRU[string, []byte]

	mu    sync.Mutex
	epoch uint64
}

func newResponseCache(size int, ttl time.Duration) *responseCache {
	return &responseCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *responseCache) get(endpoint string) ([]byte, bool) {
	return c.lru.Get(endpoint)
}

// generation returns the token a GET must present to add.
func (c *responseCache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// add stores body unless the cache was invalidated after gen was taken.
func (c *responseCache) add(endpoint string, body []byte, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.epoch {
		return false
	}
	c.lru.Add(endpoint, body)
	return true
}

func (c *responseCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.lru.Purge()
}

func (c *responseCache) len() int {
	return c.lru.Len()
}
