package domain

import "testing"

func TestNewQuestion(t *testing.T) {
	q, err := NewQuestion("Example.COM", RRTypeA, RRClassIN)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Name != "example.com." {
		t.Errorf("Name = %q, want canonicalized form", q.Name)
	}

	if _, err := NewQuestion("", RRTypeA, RRClassIN); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestQuestionCacheKey(t *testing.T) {
	a, _ := NewQuestion("example.com", RRTypeA, RRClassIN)
	b, _ := NewQuestion("EXAMPLE.COM.", RRTypeA, RRClassIN)
	if a.CacheKey() != b.CacheKey() {
		t.Errorf("expected case-insensitive cache keys to match: %q vs %q", a.CacheKey(), b.CacheKey())
	}
	c, _ := NewQuestion("example.com", RRTypeAAAA, RRClassIN)
	if a.CacheKey() == c.CacheKey() {
		t.Error("expected different types to produce different cache keys")
	}
}
