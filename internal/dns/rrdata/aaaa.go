package rrdata

import (
	"fmt"
	"net"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

// AAAA is the RDATA of an AAAA record: a single IPv6 address (RFC 3596).
type AAAA struct {
	Address net.IP
}

func (AAAA) Type() domain.RRType { return domain.RRTypeAAAA }

// Encode returns the 16-octet IPv6 address.
func (a AAAA) Encode() ([]byte, error) {
	v6 := a.Address.To16()
	if v6 == nil || a.Address.To4() != nil {
		return nil, fmt.Errorf("AAAA record address %v is not a valid IPv6 address", a.Address)
	}
	return append([]byte(nil), v6...), nil
}

func decodeAAAA(raw []byte) (RData, error) {
	if len(raw) != 16 {
		return nil, fmt.Errorf("AAAA record requires exactly 16 octets, got %d", len(raw))
	}
	ip := make(net.IP, 16)
	copy(ip, raw)
	return AAAA{Address: ip}, nil
}
