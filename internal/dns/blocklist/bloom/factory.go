package bloom

import (
	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/lucaspiller/dnsd/internal/dns/blocklist"
)

type factory struct{}

// NewFactory returns a BloomFactory that sizes filters via NewSizer's
// formulas.
func NewFactory() blocklist.BloomFactory { return factory{} }

func (factory) New(capacity uint64, fpRate float64) blocklist.BloomFilter {
	m, k := size(capacity, fpRate)
	return &filter{bf: bitsbloom.New(uint(m), uint(k))}
}
