package rrdata

import (
	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/wire/wirename"
)

// CNAME is the RDATA of a CNAME record: the canonical name that the owner
// name is an alias for.
type CNAME struct {
	Target string
}

func (CNAME) Type() domain.RRType { return domain.RRTypeCNAME }

func (c CNAME) Encode() ([]byte, error) {
	return wirename.Encode(c.Target)
}

func decodeCNAMEFromSlice(raw []byte, decodeName func([]byte, int) (string, int, error)) (RData, error) {
	name, _, err := decodeName(raw, 0)
	if err != nil {
		return Unknown{TypeCode: domain.RRTypeCNAME, Raw: append([]byte(nil), raw...)}, nil
	}
	return CNAME{Target: name}, nil
}
