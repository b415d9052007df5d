// Package resolver implements an iterative recursive resolver: starting
// from the root servers, it walks referrals and CNAME chains until
// it reaches an answer, consulting a cache and an optional blocklist along
// the way.
package resolver

import (
	"github.com/lucaspiller/dnsd/internal/dns/common/log"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/transport"
)

// Cache is the subset of *cache.Cache the resolver depends on.
type Cache interface {
	Get(key string) ([]domain.ResourceRecord, bool)
	Set(records []domain.ResourceRecord) error
}

// Blocklist decides whether a name should be denied before any network I/O
// happens.
type Blocklist interface {
	Decide(name string) domain.BlockDecision
}

// Transport sends an already-encoded message to an endpoint. Re-declared
// here (rather than imported directly) so resolver depends only on the
// interface, not transport's concrete types, matching the corpus's
// narrow-interface-at-the-consumer style; transport.Transport already
// satisfies it structurally.
type Transport = transport.Transport

// Endpoint identifies a nameserver.
type Endpoint = transport.Endpoint

// Logger alias kept for readability at call sites.
type Logger = log.Logger
