// Package zone holds authoritative DNS data in memory: zones keyed by
// origin, each holding the resource records owned by names within it, and a
// Store that selects the most specific zone for a query name.
package zone

import (
	"sync"

	"github.com/lucaspiller/dnsd/internal/dns/common/names"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

// Zone holds every resource record owned by names within a single origin.
type Zone struct {
	Origin string

	mu      sync.RWMutex
	records map[string][]domain.ResourceRecord // owner name -> RRs
}

// NewZone creates an empty zone rooted at origin.
func NewZone(origin string) *Zone {
	return &Zone{
		Origin:  names.Canonical(origin),
		records: make(map[string][]domain.ResourceRecord),
	}
}

// Add inserts rr into the zone under its own owner name.
func (z *Zone) Add(rr domain.ResourceRecord) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.records[rr.Name] = append(z.records[rr.Name], rr)
}

// Lookup returns the records owned by name whose type is literally rrtype.
// It never substitutes a CNAME for a missing exact-type match; a caller that
// wants to follow an alias does so itself, against this same Store.
func (z *Zone) Lookup(name string, rrtype domain.RRType) ([]domain.ResourceRecord, bool) {
	z.mu.RLock()
	defer z.mu.RUnlock()

	all, ok := z.records[names.Canonical(name)]
	if !ok {
		return nil, false
	}

	var matches []domain.ResourceRecord
	for _, rr := range all {
		if rr.Type == rrtype {
			matches = append(matches, rr)
		}
	}
	if len(matches) == 0 {
		return nil, false
	}
	return matches, true
}

// HasOwner reports whether any record exists for the exact owner name,
// regardless of type. Used to distinguish NXDOMAIN from NODATA.
func (z *Zone) HasOwner(name string) bool {
	z.mu.RLock()
	defer z.mu.RUnlock()
	_, ok := z.records[names.Canonical(name)]
	return ok
}

// NS returns the NS records owned by name. The zone origin's own NS records
// are returned as well; NS does not distinguish a zone cut from the origin.
func (z *Zone) NS(name string) ([]domain.ResourceRecord, bool) {
	return z.Lookup(name, domain.RRTypeNS)
}

// SOA returns the zone's SOA record, if present at the origin.
func (z *Zone) SOA() (domain.ResourceRecord, bool) {
	recs, ok := z.Lookup(z.Origin, domain.RRTypeSOA)
	if !ok || len(recs) == 0 {
		return domain.ResourceRecord{}, false
	}
	return recs[0], true
}

// Store holds every configured Zone and selects the most specific one for a
// given query name.
type Store struct {
	mu    sync.RWMutex
	zones map[string]*Zone // origin -> zone
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{zones: make(map[string]*Zone)}
}

// AddZone registers z, replacing any existing zone with the same origin.
func (s *Store) AddZone(z *Zone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones[z.Origin] = z
}

// RemoveZone removes the zone rooted at origin, if present.
func (s *Store) RemoveZone(origin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.zones, names.Canonical(origin))
}

// SelectZone returns the zone whose origin is the longest suffix of qname,
// or false if qname falls under no configured zone.
func (s *Store) SelectZone(qname string) (*Zone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	origins := make([]string, 0, len(s.zones))
	for origin := range s.zones {
		origins = append(origins, origin)
	}
	origin, ok := names.LongestSuffixMatch(qname, origins)
	if !ok {
		return nil, false
	}
	return s.zones[origin], true
}

// Origins returns every zone origin currently registered.
func (s *Store) Origins() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.zones))
	for origin := range s.zones {
		out = append(out, origin)
	}
	return out
}
