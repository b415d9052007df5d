package rrdata

import (
	"testing"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

func TestNameBearingRoundTrip(t *testing.T) {
	cases := []struct {
		rrtype domain.RRType
		value  RData
	}{
		{domain.RRTypeNS, NS{Target: "ns1.example.com."}},
		{domain.RRTypeCNAME, CNAME{Target: "alias.example.com."}},
		{domain.RRTypePTR, PTR{Target: "host.example.com."}},
	}
	for _, tc := range cases {
		enc, err := tc.value.Encode()
		if err != nil {
			t.Fatalf("%v Encode: %v", tc.rrtype, err)
		}
		got, err := FromRData(tc.rrtype, domain.RRClassIN, enc)
		if err != nil {
			t.Fatalf("%v FromRData: %v", tc.rrtype, err)
		}
		if got != tc.value {
			t.Errorf("%v round trip = %#v, want %#v", tc.rrtype, got, tc.value)
		}
	}
}

func TestMXRoundTrip(t *testing.T) {
	want := MX{Preference: 10, Exchange: "mail.example.com."}
	enc, err := want.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := FromRData(domain.RRTypeMX, domain.RRClassIN, enc)
	if err != nil {
		t.Fatalf("FromRData: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %#v, want %#v", got, want)
	}
}

func TestMXRejectsTruncated(t *testing.T) {
	if _, err := FromRData(domain.RRTypeMX, domain.RRClassIN, []byte{0, 1}); err == nil {
		t.Error("expected error for truncated MX rdata")
	}
}

func TestSOARoundTrip(t *testing.T) {
	want := SOA{
		MName:   "ns1.example.com.",
		RName:   "hostmaster.example.com.",
		Serial:  2026080601,
		Refresh: 3600,
		Retry:   900,
		Expire:  604800,
		Minimum: 300,
	}
	enc, err := want.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := FromRData(domain.RRTypeSOA, domain.RRClassIN, enc)
	if err != nil {
		t.Fatalf("FromRData: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %#v, want %#v", got, want)
	}
}

func TestCompressedNameFallsBackToUnknownInStandaloneMode(t *testing.T) {
	// A standalone slice containing a compression pointer has no enclosing
	// message to resolve it against, so decode degrades to Unknown instead
	// of erroring the caller.
	raw := []byte{0xC0, 0x00}
	got, err := FromRData(domain.RRTypeNS, domain.RRClassIN, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.(Unknown); !ok {
		t.Errorf("got %T, want Unknown", got)
	}
}
