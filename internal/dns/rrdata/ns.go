package rrdata

import (
	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/wire/wirename"
)

// NS is the RDATA of an NS record: the canonical name of a nameserver
// authoritative for the owner name's zone.
type NS struct {
	Target string
}

func (NS) Type() domain.RRType { return domain.RRTypeNS }

func (n NS) Encode() ([]byte, error) {
	return wirename.Encode(n.Target)
}

func decodeNSFromSlice(raw []byte, decodeName func([]byte, int) (string, int, error)) (RData, error) {
	name, _, err := decodeName(raw, 0)
	if err != nil {
		return Unknown{TypeCode: domain.RRTypeNS, Raw: append([]byte(nil), raw...)}, nil
	}
	return NS{Target: name}, nil
}
