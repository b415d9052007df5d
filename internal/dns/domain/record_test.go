package domain

import (
	"testing"
	"time"
)

func TestAuthoritativeRecordNeverExpires(t *testing.T) {
	rr, err := NewAuthoritativeRecord("www.test.com", RRTypeA, RRClassIN, 3600, []byte{192, 168, 1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rr.IsAuthoritative() {
		t.Error("expected authoritative record")
	}
	if rr.IsExpired() {
		t.Error("authoritative records never expire")
	}
	if rr.TTL() != 3600 {
		t.Errorf("TTL() = %d, want 3600", rr.TTL())
	}
}

func TestCachedRecordExpires(t *testing.T) {
	now := time.Now()
	rr, err := NewCachedRecord("example.com", RRTypeA, RRClassIN, 10, []byte{1, 2, 3, 4}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rr.IsAuthoritative() {
		t.Error("expected non-authoritative record")
	}
	if rr.IsExpired() {
		t.Error("should not be expired immediately")
	}
	if rr.TTL() > 10 {
		t.Errorf("TTL() = %d, want <= 10", rr.TTL())
	}

	past := now.Add(-time.Hour)
	stale, err := NewCachedRecord("example.com", RRTypeA, RRClassIN, 10, []byte{1, 2, 3, 4}, past)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stale.IsExpired() {
		t.Error("expected record inserted an hour ago with a 10s TTL to be expired")
	}
	if stale.TTL() != 0 {
		t.Errorf("TTL() = %d, want 0 for expired record", stale.TTL())
	}
}

func TestRecordCacheKeyMatchesQuestionCacheKey(t *testing.T) {
	q, _ := NewQuestion("www.test.com", RRTypeA, RRClassIN)
	rr, _ := NewAuthoritativeRecord("www.test.com", RRTypeA, RRClassIN, 60, []byte{1, 1, 1, 1})
	if q.CacheKey() != rr.CacheKey() {
		t.Errorf("cache keys differ: %q vs %q", q.CacheKey(), rr.CacheKey())
	}
}
