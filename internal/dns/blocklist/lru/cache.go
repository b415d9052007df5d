// Package lru implements blocklist.DecisionCache on top of
// hashicorp/golang-lru, the same library the resolver's answer cache uses
// (internal/dns/cache).
package lru

import (
	"sync/atomic"

	hlru "github.com/hashicorp/golang-lru/v2"

	"github.com/lucaspiller/dnsd/internal/dns/blocklist"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

type decisionCache struct {
	lru       *hlru.Cache[string, domain.BlockDecision]
	hits      uint64
	misses    uint64
	evictions uint64
}

// disabledCache is returned when size <= 0: every lookup misses and no
// metrics accrue.
type disabledCache struct{}

// New creates a DecisionCache holding at most size entries. A non-positive
// size disables caching entirely.
func New(size int) (blocklist.DecisionCache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}

	dc := &decisionCache{}
	backing, err := hlru.NewWithEvict(size, func(_ string, _ domain.BlockDecision) {
		atomic.AddUint64(&dc.evictions, 1)
	})
	if err != nil {
		return nil, err
	}
	dc.lru = backing
	return dc, nil
}

func (c *decisionCache) Get(name string) (domain.BlockDecision, bool) {
	if v, ok := c.lru.Get(name); ok {
		atomic.AddUint64(&c.hits, 1)
		return v, true
	}
	atomic.AddUint64(&c.misses, 1)
	return domain.BlockDecision{}, false
}

func (c *decisionCache) Put(name string, d domain.BlockDecision) { c.lru.Add(name, d) }

func (c *decisionCache) Len() int { return c.lru.Len() }

func (c *decisionCache) Purge() { c.lru.Purge() }

func (c *decisionCache) Stats() (hits, misses, evictions uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses), atomic.LoadUint64(&c.evictions)
}

func (d *disabledCache) Get(string) (domain.BlockDecision, bool) { return domain.BlockDecision{}, false }
func (d *disabledCache) Put(string, domain.BlockDecision)        {}
func (d *disabledCache) Len() int                                { return 0 }
func (d *disabledCache) Purge()                                  {}
func (d *disabledCache) Stats() (uint64, uint64, uint64)         { return 0, 0, 0 }

var (
	_ blocklist.DecisionCache = (*decisionCache)(nil)
	_ blocklist.DecisionCache = (*disabledCache)(nil)
)
