package rrdata

import (
	"testing"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

func TestHINFORoundTrip(t *testing.T) {
	want := HINFO{CPU: "AMD64", OS: "LINUX"}
	enc, err := want.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := FromRData(domain.RRTypeHINFO, domain.RRClassIN, enc)
	if err != nil {
		t.Fatalf("FromRData: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %#v, want %#v", got, want)
	}
}

func TestHINFORejectsTruncated(t *testing.T) {
	if _, err := FromRData(domain.RRTypeHINFO, domain.RRClassIN, []byte{5, 'A'}); err == nil {
		t.Error("expected error for truncated HINFO rdata")
	}
}
