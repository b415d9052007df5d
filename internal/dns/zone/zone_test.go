package zone

import (
	"testing"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

func mustRecord(t *testing.T, name string, rrtype domain.RRType, ttl uint32, rdata []byte) domain.ResourceRecord {
	t.Helper()
	rr, err := domain.NewAuthoritativeRecord(name, rrtype, domain.RRClassIN, ttl, rdata)
	if err != nil {
		t.Fatalf("NewAuthoritativeRecord: %v", err)
	}
	return rr
}

func TestZoneLookupExactOwner(t *testing.T) {
	z := NewZone("example.com.")
	z.Add(mustRecord(t, "www.example.com.", domain.RRTypeA, 300, []byte{192, 0, 2, 1}))

	recs, ok := z.Lookup("www.example.com.", domain.RRTypeA)
	if !ok || len(recs) != 1 {
		t.Fatalf("Lookup = %v, %v; want 1 record found", recs, ok)
	}
}

func TestZoneLookupMissingOwnerIsNotFound(t *testing.T) {
	z := NewZone("example.com.")
	if _, ok := z.Lookup("nope.example.com.", domain.RRTypeA); ok {
		t.Error("expected lookup miss for unknown owner")
	}
}

func TestZoneLookupDoesNotSubstituteCNAMEForOtherTypes(t *testing.T) {
	z := NewZone("example.com.")
	z.Add(mustRecord(t, "alias.example.com.", domain.RRTypeCNAME, 300, []byte{}))

	if _, ok := z.Lookup("alias.example.com.", domain.RRTypeA); ok {
		t.Fatal("Lookup should not substitute a CNAME for a literal type match")
	}

	recs, ok := z.Lookup("alias.example.com.", domain.RRTypeCNAME)
	if !ok || len(recs) != 1 || recs[0].Type != domain.RRTypeCNAME {
		t.Fatalf("Lookup(CNAME) = %v, %v; want the CNAME record itself", recs, ok)
	}
}

func TestStoreSelectZoneLongestSuffix(t *testing.T) {
	s := NewStore()
	s.AddZone(NewZone("com."))
	s.AddZone(NewZone("example.com."))

	z, ok := s.SelectZone("host.www.example.com.")
	if !ok {
		t.Fatal("expected a zone match")
	}
	if z.Origin != "example.com." {
		t.Errorf("selected origin = %q, want example.com.", z.Origin)
	}
}

func TestStoreSelectZoneNoMatch(t *testing.T) {
	s := NewStore()
	s.AddZone(NewZone("example.com."))
	if _, ok := s.SelectZone("example.net."); ok {
		t.Error("expected no zone match for unrelated domain")
	}
}

func TestStoreRemoveZone(t *testing.T) {
	s := NewStore()
	s.AddZone(NewZone("example.com."))
	s.RemoveZone("example.com.")
	if _, ok := s.SelectZone("example.com."); ok {
		t.Error("expected zone to be gone after removal")
	}
}
