// Package blocklist decides whether a query name should be blocked before it
// reaches the zone store or the recursive resolver. It layers a Bloom filter
// fast-path, an LRU decision cache, and a durable Bolt-backed store, in that
// order, following the sizing and pipeline ideas of the resolver's own
// caches (see internal/dns/cache).
package blocklist

import "github.com/lucaspiller/dnsd/internal/dns/domain"

// BloomSizer computes Bloom filter parameters from a dataset capacity (n)
// and a target false-positive rate (p), returning the bit-array size m and
// hash-function count k.
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is the minimal surface the repository needs from a Bloom
// filter implementation.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
	Clear()
}

// BloomFactory builds a BloomFilter sized for a dataset of capacity entries
// at the given target false-positive rate.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// DecisionCache caches block decisions by canonical name.
type DecisionCache interface {
	Get(name string) (domain.BlockDecision, bool)
	Put(name string, d domain.BlockDecision)
	Len() int
	Purge()
	Stats() (hits, misses, evictions uint64)
}

// StoreStats reports counts and metadata for the persistent store's most
// recent snapshot.
type StoreStats struct {
	ExactCount  uint64
	SuffixCount uint64
	Version     uint64
	UpdatedUnix int64
}

// Store is the durable, authoritative index of block rules. GetFirstMatch
// resolves the most specific rule (exact beats suffix, longer suffix beats
// shorter) covering name. RebuildAll atomically replaces the entire
// snapshot, tagging it with version and updatedUnix.
type Store interface {
	GetFirstMatch(name string) (domain.BlockRule, bool, error)
	RebuildAll(rules []domain.BlockRule, version uint64, updatedUnix int64) error
	Stats() StoreStats
	Close() error
}

// RepoStats exposes repository-level counters alongside the underlying
// store's stats.
type RepoStats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Store      StoreStats
	LastUpdate int64
}

// Repository composes the Bloom filter, decision cache, and durable store
// into a single blocklist decision surface.
type Repository interface {
	Decide(name string) domain.BlockDecision
	Update(rules []domain.BlockRule, version uint64, updatedUnix int64) error
	RepoStats() RepoStats
}
