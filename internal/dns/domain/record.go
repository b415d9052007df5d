package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/lucaspiller/dnsd/internal/dns/common/names"
)

// ResourceRecord is a DNS resource record (RR): (name, type, class, ttl, rdata).
// Authoritative records (loaded from a zone) carry a fixed TTL and never expire
// from memory. Cached records (learned from an upstream response) carry an
// expiry timestamp instead; their effective TTL is computed from the time
// remaining until that expiry, so a record's wire TTL correctly counts down
// across repeated cache hits.
type ResourceRecord struct {
	Name      string
	Type      RRType
	Class     RRClass
	RData     []byte // opaque wire-format RDATA; interpretation belongs to package rrdata
	ttl       uint32
	expiresAt *time.Time // nil for authoritative records
}

// NewAuthoritativeRecord constructs a non-expiring ResourceRecord for a zone.
func NewAuthoritativeRecord(name string, rrtype RRType, class RRClass, ttl uint32, rdata []byte) (ResourceRecord, error) {
	rr := ResourceRecord{
		Name:  names.Canonical(name),
		Type:  rrtype,
		Class: class,
		ttl:   ttl,
		RData: rdata,
	}
	if err := rr.Validate(); err != nil {
		return ResourceRecord{}, err
	}
	return rr, nil
}

// NewCachedRecord constructs a ResourceRecord that expires ttl seconds after now.
func NewCachedRecord(name string, rrtype RRType, class RRClass, ttl uint32, rdata []byte, now time.Time) (ResourceRecord, error) {
	exp := now.Add(time.Duration(ttl) * time.Second)
	rr := ResourceRecord{
		Name:      names.Canonical(name),
		Type:      rrtype,
		Class:     class,
		ttl:       ttl,
		RData:     rdata,
		expiresAt: &exp,
	}
	if err := rr.Validate(); err != nil {
		return ResourceRecord{}, err
	}
	return rr, nil
}

// Validate checks structural validity of the record.
func (rr ResourceRecord) Validate() error {
	if rr.Name == "" {
		return fmt.Errorf("record name must not be empty")
	}
	return nil
}

// TTL returns the effective TTL in seconds for wire encoding: the fixed TTL
// for authoritative records, or the remaining time-to-live for cached records
// rounded up to whole seconds (floored at zero once expired).
func (rr ResourceRecord) TTL() uint32 {
	if rr.expiresAt == nil {
		return rr.ttl
	}
	remaining := time.Until(*rr.expiresAt).Seconds()
	if remaining <= 0 {
		return 0
	}
	return uint32(math.Ceil(remaining))
}

// IsExpired reports whether a cached record's expiry has passed. Authoritative
// records never expire.
func (rr ResourceRecord) IsExpired() bool {
	if rr.expiresAt == nil {
		return false
	}
	return time.Now().After(*rr.expiresAt)
}

// IsAuthoritative reports whether the record came from a zone rather than a cache.
func (rr ResourceRecord) IsAuthoritative() bool {
	return rr.expiresAt == nil
}

// CacheKey returns a cache key string derived from the record's name, type, and class.
func (rr ResourceRecord) CacheKey() string {
	return cacheKey(rr.Name, rr.Type, rr.Class)
}
