package rrdata

import (
	"fmt"
	"net"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

// A is the RDATA of an A record: a single IPv4 address (RFC 1035 §3.4.1).
type A struct {
	Address net.IP
}

func (A) Type() domain.RRType { return domain.RRTypeA }

// Encode returns the 4-octet big-endian IPv4 address.
func (a A) Encode() ([]byte, error) {
	v4 := a.Address.To4()
	if v4 == nil {
		return nil, fmt.Errorf("A record address %v is not a valid IPv4 address", a.Address)
	}
	return append([]byte(nil), v4...), nil
}

func decodeA(raw []byte) (RData, error) {
	if len(raw) != 4 {
		return nil, fmt.Errorf("A record requires exactly 4 octets, got %d", len(raw))
	}
	ip := net.IPv4(raw[0], raw[1], raw[2], raw[3])
	return A{Address: ip}, nil
}
