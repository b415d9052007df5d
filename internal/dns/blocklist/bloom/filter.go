// Package bloom adapts bits-and-blooms/bloom into the blocklist.BloomFilter
// and blocklist.BloomFactory interfaces.
package bloom

import (
	"sync"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/lucaspiller/dnsd/internal/dns/blocklist"
)

// filter wraps a bits-and-blooms BloomFilter with a mutex. MightContain is
// safe for concurrent readers; Add and Clear are serialized.
type filter struct {
	mu sync.RWMutex
	bf *bitsbloom.BloomFilter
}

func (f *filter) Add(key []byte) {
	f.mu.Lock()
	f.bf.Add(key)
	f.mu.Unlock()
}

func (f *filter) MightContain(key []byte) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bf.Test(key)
}

func (f *filter) Clear() {
	f.mu.Lock()
	f.bf.ClearAll()
	f.mu.Unlock()
}

var _ blocklist.BloomFilter = (*filter)(nil)
