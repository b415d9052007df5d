package blocklist

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/lucaspiller/dnsd/internal/dns/common/names"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

// repository implements Repository by composing a Store, a Bloom filter
// (rebuilt on every Update via factory), and a DecisionCache, applying a
// bloom -> cache -> store pipeline on reads.
type repository struct {
	mu      sync.RWMutex
	store   Store
	cache   DecisionCache
	bloom   BloomFilter
	factory BloomFactory
	fpRate  float64

	lastUpdate int64
	hits       uint64
	misses     uint64
}

// NewRepository constructs a Repository. fpRate is the target Bloom
// false-positive rate used whenever Update rebuilds the filter.
func NewRepository(store Store, cache DecisionCache, factory BloomFactory, fpRate float64) Repository {
	return &repository{store: store, cache: cache, factory: factory, fpRate: fpRate}
}

// Decide reports whether name should be blocked. On any internal error it
// prefers Allow: a blocklist outage must never take down resolution.
func (r *repository) Decide(name string) domain.BlockDecision {
	cn := names.Canonical(name)

	if !r.checkBloom(cn) {
		atomic.AddUint64(&r.misses, 1)
		return domain.AllowDecision()
	}

	if d, ok := r.checkCache(cn); ok {
		atomic.AddUint64(&r.hits, 1)
		return d
	}
	atomic.AddUint64(&r.misses, 1)

	dec := r.checkStore(cn)
	r.updateCache(cn, dec)
	return dec
}

// Update performs an atomic snapshot replacement: rebuild the durable
// store, then a freshly sized Bloom filter, then swap the filter and purge
// the decision cache under lock.
func (r *repository) Update(rules []domain.BlockRule, version uint64, updatedUnix int64) error {
	if err := r.store.RebuildAll(rules, version, updatedUnix); err != nil {
		return err
	}

	var n uint64
	for _, ru := range rules {
		if ru.Kind == domain.BlockRuleExact || ru.Kind == domain.BlockRuleSuffix {
			n++
		}
	}
	bf := r.factory.New(n, r.fpRate)
	for _, ru := range rules {
		switch ru.Kind {
		case domain.BlockRuleExact:
			bf.Add([]byte(ru.Name))
		case domain.BlockRuleSuffix:
			bf.Add([]byte(reverseString(ru.Name)))
		}
	}

	r.mu.Lock()
	r.bloom = bf
	r.cache.Purge()
	r.lastUpdate = updatedUnix
	r.mu.Unlock()
	return nil
}

// RepoStats returns a snapshot of repository and store counters.
func (r *repository) RepoStats() RepoStats {
	r.mu.RLock()
	lastUpdate := r.lastUpdate
	r.mu.RUnlock()
	_, _, evictions := r.cache.Stats()
	return RepoStats{
		Hits:       atomic.LoadUint64(&r.hits),
		Misses:     atomic.LoadUint64(&r.misses),
		Evictions:  evictions,
		Store:      r.store.Stats(),
		LastUpdate: lastUpdate,
	}
}

// reverseString reverses a string's runes. Suffix rule anchors are stored
// and Bloom-tested in reversed form; each ancestor domain of a query name is
// reversed and tested separately.
func reverseString(s string) string {
	rs := []rune(s)
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
	return string(rs)
}

// checkBloom reports whether the store needs consulting: true means
// "maybe present", false means the Bloom filter has definitely never seen
// this name or any of its ancestor suffixes.
func (r *repository) checkBloom(cn string) bool {
	r.mu.RLock()
	bf := r.bloom
	r.mu.RUnlock()
	if bf == nil {
		return true
	}
	if bf.MightContain([]byte(cn)) {
		return true
	}
	a := cn
	for {
		if bf.MightContain([]byte(reverseString(a))) {
			return true
		}
		i := strings.IndexByte(a, '.')
		if i < 0 {
			break
		}
		a = a[i+1:]
		if a == "" {
			break
		}
	}
	return false
}

func (r *repository) checkCache(cn string) (domain.BlockDecision, bool) {
	return r.cache.Get(cn)
}

func (r *repository) checkStore(cn string) domain.BlockDecision {
	rule, ok, err := r.store.GetFirstMatch(cn)
	if err != nil || !ok {
		return domain.AllowDecision()
	}
	return domain.BlockDecision{Blocked: true, MatchedRule: rule.Name, Source: rule.Source, Kind: rule.Kind}
}

func (r *repository) updateCache(cn string, dec domain.BlockDecision) {
	r.cache.Put(cn, dec)
}
