package cache

import (
	"testing"
	"time"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

func mustCached(t *testing.T, name string, ttl uint32, now time.Time) domain.ResourceRecord {
	t.Helper()
	rr, err := domain.NewCachedRecord(name, domain.RRTypeA, domain.RRClassIN, ttl, []byte{192, 0, 2, 1}, now)
	if err != nil {
		t.Fatalf("NewCachedRecord: %v", err)
	}
	return rr
}

func TestSetAndGet(t *testing.T) {
	c, err := New(10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rr := mustCached(t, "example.com.", 300, time.Now())
	if err := c.Set([]domain.ResourceRecord{rr}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get(rr.CacheKey())
	if !ok || len(got) != 1 {
		t.Fatalf("Get = %v, %v; want 1 record", got, ok)
	}
}

func TestSetRejectsMixedKeys(t *testing.T) {
	c, _ := New(10)
	now := time.Now()
	a := mustCached(t, "example.com.", 300, now)
	b, _ := domain.NewCachedRecord("other.com.", domain.RRTypeA, domain.RRClassIN, 300, []byte{1, 2, 3, 4}, now)
	if err := c.Set([]domain.ResourceRecord{a, b}); err != ErrMixedKeys {
		t.Errorf("Set error = %v, want ErrMixedKeys", err)
	}
}

func TestGetEvictsExpiredEntries(t *testing.T) {
	c, _ := New(10)
	past := time.Now().Add(-time.Hour)
	rr := mustCached(t, "stale.example.com.", 1, past)
	c.Set([]domain.ResourceRecord{rr})

	if _, ok := c.Get(rr.CacheKey()); ok {
		t.Error("expected expired record to be absent")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0 after expired entry is evicted", c.Len())
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	c, _ := New(10)
	rr := mustCached(t, "example.com.", 300, time.Now())
	c.Set([]domain.ResourceRecord{rr})
	c.Delete(rr.CacheKey())
	if _, ok := c.Get(rr.CacheKey()); ok {
		t.Error("expected record to be gone after Delete")
	}
}
