package rrdata

import (
	"fmt"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/wire/wirename"
)

// SOA is the RDATA of an SOA record: the authority data for a zone.
type SOA struct {
	MName   string
	RName   string
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (SOA) Type() domain.RRType { return domain.RRTypeSOA }

func (s SOA) Encode() ([]byte, error) {
	mname, err := wirename.Encode(s.MName)
	if err != nil {
		return nil, err
	}
	rname, err := wirename.Encode(s.RName)
	if err != nil {
		return nil, err
	}
	out := append([]byte(nil), mname...)
	out = append(out, rname...)
	out = append(out, putBE32(s.Serial)...)
	out = append(out, putBE32(s.Refresh)...)
	out = append(out, putBE32(s.Retry)...)
	out = append(out, putBE32(s.Expire)...)
	out = append(out, putBE32(s.Minimum)...)
	return out, nil
}

func decodeSOAFromSlice(raw []byte, decodeName func([]byte, int) (string, int, error)) (RData, error) {
	mname, next, err := decodeName(raw, 0)
	if err != nil {
		return Unknown{TypeCode: domain.RRTypeSOA, Raw: append([]byte(nil), raw...)}, nil
	}
	rname, next2, err := decodeName(raw, next)
	if err != nil {
		return Unknown{TypeCode: domain.RRTypeSOA, Raw: append([]byte(nil), raw...)}, nil
	}
	if next2+20 > len(raw) {
		return nil, fmt.Errorf("SOA record truncated: need 20 octets of fixed fields after names, have %d", len(raw)-next2)
	}
	return SOA{
		MName:   mname,
		RName:   rname,
		Serial:  be32(raw, next2),
		Refresh: be32(raw, next2+4),
		Retry:   be32(raw, next2+8),
		Expire:  be32(raw, next2+12),
		Minimum: be32(raw, next2+16),
	}, nil
}
