// Package cache provides an in-memory, TTL-aware resolver cache backed by
// an LRU eviction policy.
package cache

import (
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

// ErrMixedKeys is returned by Set when the given records do not all share
// the same cache key.
var ErrMixedKeys = errors.New("records passed to Set have different cache keys")

// Cache stores resolver answers keyed by (name, type, class), evicting the
// least recently used key once its capacity is exceeded. Individual
// records expire on their own schedule independent of LRU eviction.
type Cache struct {
	lru *lru.Cache[string, []domain.ResourceRecord]
}

// New creates a Cache holding at most size distinct keys.
func New(size int) (*Cache, error) {
	backing, err := lru.New[string, []domain.ResourceRecord](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: backing}, nil
}

// Set stores records under the cache key shared by all of them. Set on an
// empty slice is a no-op.
func (c *Cache) Set(records []domain.ResourceRecord) error {
	if len(records) == 0 {
		return nil
	}
	key := records[0].CacheKey()
	for _, rr := range records {
		if rr.CacheKey() != key {
			return ErrMixedKeys
		}
	}
	c.lru.Add(key, records)
	return nil
}

// Get returns the non-expired records stored under key. Any expired
// records found during the lookup are dropped from the cache as a side
// effect; if none remain, the key is evicted entirely.
func (c *Cache) Get(key string) ([]domain.ResourceRecord, bool) {
	records, found := c.lru.Get(key)
	if !found {
		return nil, false
	}

	var live []domain.ResourceRecord
	for _, rr := range records {
		if !rr.IsExpired() {
			live = append(live, rr)
		}
	}
	if len(live) == 0 {
		c.lru.Remove(key)
		return nil, false
	}
	if len(live) != len(records) {
		c.lru.Add(key, live)
	}
	return live, true
}

// Delete removes key's entry, if present.
func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}

// Len returns the number of distinct keys currently stored.
func (c *Cache) Len() int {
	return c.lru.Len()
}
