package rrdata

import (
	"fmt"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

// TXT is the RDATA of a TXT record: one or more length-prefixed character
// strings. A TXT record with a single zero-length string is valid and
// distinct from a TXT record with zero strings; both are representable.
type TXT struct {
	Strings []string
}

func (TXT) Type() domain.RRType { return domain.RRTypeTXT }

func (t TXT) Encode() ([]byte, error) {
	var out []byte
	for _, s := range t.Strings {
		if len(s) > 255 {
			return nil, fmt.Errorf("TXT character-string %q exceeds 255 octets", s)
		}
		out = append(out, byte(len(s)))
		out = append(out, s...)
	}
	return out, nil
}

func decodeTXT(raw []byte) (RData, error) {
	var strs []string
	pos := 0
	for pos < len(raw) {
		length := int(raw[pos])
		pos++
		if pos+length > len(raw) {
			return nil, fmt.Errorf("TXT character-string extends past end of rdata")
		}
		strs = append(strs, string(raw[pos:pos+length]))
		pos += length
	}
	return TXT{Strings: strs}, nil
}
