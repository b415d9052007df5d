package rrdata

import (
	"net"
	"testing"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

func TestWKSRoundTrip(t *testing.T) {
	want := WKS{
		Address:  net.IPv4(192, 0, 2, 1),
		Protocol: 6,
		Bitmap:   []byte{0x40, 0x01},
	}
	enc, err := want.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := FromRData(domain.RRTypeWKS, domain.RRClassIN, enc)
	if err != nil {
		t.Fatalf("FromRData: %v", err)
	}
	wks, ok := got.(WKS)
	if !ok {
		t.Fatalf("got %T, want WKS", got)
	}
	if !wks.Address.Equal(want.Address) || wks.Protocol != want.Protocol || string(wks.Bitmap) != string(want.Bitmap) {
		t.Errorf("got %#v, want %#v", wks, want)
	}
}

func TestWKSRejectsTooShort(t *testing.T) {
	if _, err := FromRData(domain.RRTypeWKS, domain.RRClassIN, []byte{192, 0, 2}); err == nil {
		t.Error("expected error for truncated WKS rdata")
	}
}
