package rrdata

import (
	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/wire/wirename"
)

// PTR is the RDATA of a PTR record: a domain name pointing to some other
// location in the domain name space, most commonly used for reverse lookups.
type PTR struct {
	Target string
}

func (PTR) Type() domain.RRType { return domain.RRTypePTR }

func (p PTR) Encode() ([]byte, error) {
	return wirename.Encode(p.Target)
}

func decodePTRFromSlice(raw []byte, decodeName func([]byte, int) (string, int, error)) (RData, error) {
	name, _, err := decodeName(raw, 0)
	if err != nil {
		return Unknown{TypeCode: domain.RRTypePTR, Raw: append([]byte(nil), raw...)}, nil
	}
	return PTR{Target: name}, nil
}
