package zone

import (
	"testing"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/rrdata"
)

func TestEncodeValueA(t *testing.T) {
	raw, err := encodeValue(domain.RRTypeA, "192.0.2.1")
	if err != nil {
		t.Fatalf("encodeValue: %v", err)
	}
	got, err := rrdata.FromRData(domain.RRTypeA, domain.RRClassIN, raw)
	if err != nil {
		t.Fatalf("FromRData: %v", err)
	}
	a := got.(rrdata.A)
	if a.Address.String() != "192.0.2.1" {
		t.Errorf("Address = %v, want 192.0.2.1", a.Address)
	}
}

func TestEncodeValueMX(t *testing.T) {
	raw, err := encodeValue(domain.RRTypeMX, "10 mail.example.com.")
	if err != nil {
		t.Fatalf("encodeValue: %v", err)
	}
	got, err := rrdata.FromRData(domain.RRTypeMX, domain.RRClassIN, raw)
	if err != nil {
		t.Fatalf("FromRData: %v", err)
	}
	mx := got.(rrdata.MX)
	if mx.Preference != 10 || mx.Exchange != "mail.example.com." {
		t.Errorf("got %#v", mx)
	}
}

func TestEncodeValueSOA(t *testing.T) {
	raw, err := encodeValue(domain.RRTypeSOA, "ns1.example.com. hostmaster.example.com. 2026080601 3600 900 604800 300")
	if err != nil {
		t.Fatalf("encodeValue: %v", err)
	}
	got, err := rrdata.FromRData(domain.RRTypeSOA, domain.RRClassIN, raw)
	if err != nil {
		t.Fatalf("FromRData: %v", err)
	}
	soa := got.(rrdata.SOA)
	if soa.Serial != 2026080601 || soa.MName != "ns1.example.com." {
		t.Errorf("got %#v", soa)
	}
}

func TestEncodeValueRejectsMalformedInput(t *testing.T) {
	if _, err := encodeValue(domain.RRTypeA, "not-an-ip"); err == nil {
		t.Error("expected error for invalid A record text")
	}
	if _, err := encodeValue(domain.RRTypeMX, "not-enough-fields"); err == nil {
		t.Error("expected error for malformed MX record text")
	}
}

func TestExpandOwner(t *testing.T) {
	if got := expandOwner("@", "example.com."); got != "example.com." {
		t.Errorf("expandOwner(@) = %q, want example.com.", got)
	}
	if got := expandOwner("www", "example.com."); got != "www.example.com." {
		t.Errorf("expandOwner(www) = %q, want www.example.com.", got)
	}
	if got := expandOwner("other.net.", "example.com."); got != "other.net." {
		t.Errorf("expandOwner(other.net.) = %q, want other.net.", got)
	}
}
