// Package authoritative implements the zone-backed DNS responder: given a
// parsed request and a Zone Store, it constructs a response by lookup,
// referral, or NXDOMAIN, consulting an optional Blocklist first.
package authoritative

import (
	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/zone"
)

// ZoneStore is the subset of *zone.Store the responder depends on.
type ZoneStore interface {
	SelectZone(qname string) (*zone.Zone, bool)
}

// Blocklist decides whether a query name should be denied before the Zone
// Store is ever consulted.
type Blocklist interface {
	Decide(name string) domain.BlockDecision
}
