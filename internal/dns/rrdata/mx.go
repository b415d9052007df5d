package rrdata

import (
	"fmt"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/wire/wirename"
)

// MX is the RDATA of an MX record: a mail exchange preference and the
// canonical name of the host willing to act as one.
type MX struct {
	Preference uint16
	Exchange   string
}

func (MX) Type() domain.RRType { return domain.RRTypeMX }

func (m MX) Encode() ([]byte, error) {
	name, err := wirename.Encode(m.Exchange)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 2, 2+len(name))
	out[0] = byte(m.Preference >> 8)
	out[1] = byte(m.Preference)
	out = append(out, name...)
	return out, nil
}

func decodeMXFromSlice(raw []byte, decodeName func([]byte, int) (string, int, error)) (RData, error) {
	if len(raw) < 3 {
		return nil, fmt.Errorf("MX record requires at least 3 octets, got %d", len(raw))
	}
	pref := uint16(raw[0])<<8 | uint16(raw[1])
	exchange, _, err := decodeName(raw, 2)
	if err != nil {
		return Unknown{TypeCode: domain.RRTypeMX, Raw: append([]byte(nil), raw...)}, nil
	}
	return MX{Preference: pref, Exchange: exchange}, nil
}
