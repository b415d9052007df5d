// Package rrdata provides typed views over the opaque RDATA octet string
// carried by each supported DNS resource record type. The wire codec only
// expands compressed names inside RDATA; this package is where those bytes
// are given type-specific meaning.
package rrdata

import (
	"fmt"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/wire/wirename"
)

// RData is the tagged-union interface implemented by every typed record
// payload, plus the Unknown fallback. Record kinds are modeled as a sum type
// rather than a class hierarchy. A recognized type code whose payload has
// the wrong shape is reported as an error by FromRData/FromMessage; only a
// payload whose embedded name cannot be decoded degrades to Unknown.
type RData interface {
	// Type returns the RRType this payload represents.
	Type() domain.RRType
	// Encode returns the canonical wire-format RDATA bytes for this value.
	Encode() ([]byte, error)
}

// Unknown wraps the raw RDATA bytes for a record whose type this engine
// does not have a typed parser for, or whose embedded name could not be
// decoded. It is never itself an error: encoding it is the identity
// function, so pass-through of unrecognized record types is exact.
type Unknown struct {
	TypeCode domain.RRType
	Raw      []byte
}

func (u Unknown) Type() domain.RRType    { return u.TypeCode }
func (u Unknown) Encode() ([]byte, error) { return append([]byte(nil), u.Raw...), nil }

// FromRData parses a standalone RDATA slice (no enclosing message) into a
// typed value. This mode cannot resolve compression pointers, so it is used
// for zone-file-constructed records and test fixtures where names are
// always written out in full. Types without embedded names (A, AAAA, TXT,
// HINFO, WKS) work identically in both parse modes.
func FromRData(rrtype domain.RRType, class domain.RRClass, raw []byte) (RData, error) {
	return decode(rrtype, raw, func(buf []byte, offset int) (string, int, error) {
		return wirename.Decode(buf, offset)
	})
}

// FromMessage parses the RDATA of a record embedded in a full DNS message,
// starting at offset within buf and spanning rdlength octets. Names
// embedded in RDATA (NS/CNAME/PTR/MX/SOA targets) may carry compression
// pointers into the rest of the message, so this mode requires the full
// message buffer rather than just the rdata slice.
func FromMessage(rrtype domain.RRType, class domain.RRClass, buf []byte, offset, rdlength int) (RData, error) {
	if offset < 0 || offset+rdlength > len(buf) {
		return nil, fmt.Errorf("rdata range [%d:%d] out of bounds for message of length %d", offset, offset+rdlength, len(buf))
	}
	raw := buf[offset : offset+rdlength]
	switch rrtype {
	case domain.RRTypeNS, domain.RRTypeCNAME, domain.RRTypePTR, domain.RRTypeMX, domain.RRTypeSOA:
		// These embed names that may be compressed against the whole
		// message, so decode against buf at the record's absolute offset
		// rather than against the rdata slice in isolation.
		return decodeNameBearing(rrtype, buf, offset, rdlength)
	default:
		return FromRData(rrtype, class, raw)
	}
}

// decode dispatches to the per-type parser for a standalone (already
// sliced) RDATA buffer, using decodeName for any embedded names.
// Unrecognized types fall back to Unknown; a recognized type with a
// malformed payload returns the per-type parser's error.
func decode(rrtype domain.RRType, raw []byte, decodeName func([]byte, int) (string, int, error)) (RData, error) {
	switch rrtype {
	case domain.RRTypeA:
		return decodeA(raw)
	case domain.RRTypeAAAA:
		return decodeAAAA(raw)
	case domain.RRTypeNS:
		return decodeNSFromSlice(raw, decodeName)
	case domain.RRTypeCNAME:
		return decodeCNAMEFromSlice(raw, decodeName)
	case domain.RRTypePTR:
		return decodePTRFromSlice(raw, decodeName)
	case domain.RRTypeMX:
		return decodeMXFromSlice(raw, decodeName)
	case domain.RRTypeSOA:
		return decodeSOAFromSlice(raw, decodeName)
	case domain.RRTypeTXT:
		return decodeTXT(raw)
	case domain.RRTypeHINFO:
		return decodeHINFO(raw)
	case domain.RRTypeWKS:
		return decodeWKS(raw)
	default:
		return Unknown{TypeCode: rrtype, Raw: append([]byte(nil), raw...)}, nil
	}
}

// decodeNameBearing decodes the message-relative types whose RDATA embeds one
// or more names, using the full message buffer so compression pointers
// resolve correctly.
func decodeNameBearing(rrtype domain.RRType, buf []byte, offset, rdlength int) (RData, error) {
	switch rrtype {
	case domain.RRTypeNS:
		name, _, err := wirename.Decode(buf, offset)
		if err != nil {
			return Unknown{TypeCode: rrtype, Raw: append([]byte(nil), buf[offset:offset+rdlength]...)}, nil
		}
		return NS{Target: name}, nil
	case domain.RRTypeCNAME:
		name, _, err := wirename.Decode(buf, offset)
		if err != nil {
			return Unknown{TypeCode: rrtype, Raw: append([]byte(nil), buf[offset:offset+rdlength]...)}, nil
		}
		return CNAME{Target: name}, nil
	case domain.RRTypePTR:
		name, _, err := wirename.Decode(buf, offset)
		if err != nil {
			return Unknown{TypeCode: rrtype, Raw: append([]byte(nil), buf[offset:offset+rdlength]...)}, nil
		}
		return PTR{Target: name}, nil
	case domain.RRTypeMX:
		if rdlength < 2 {
			return Unknown{TypeCode: rrtype, Raw: append([]byte(nil), buf[offset:offset+rdlength]...)}, nil
		}
		pref := uint16(buf[offset])<<8 | uint16(buf[offset+1])
		exchange, _, err := wirename.Decode(buf, offset+2)
		if err != nil {
			return Unknown{TypeCode: rrtype, Raw: append([]byte(nil), buf[offset:offset+rdlength]...)}, nil
		}
		return MX{Preference: pref, Exchange: exchange}, nil
	case domain.RRTypeSOA:
		mname, next, err := wirename.Decode(buf, offset)
		if err != nil {
			return Unknown{TypeCode: rrtype, Raw: append([]byte(nil), buf[offset:offset+rdlength]...)}, nil
		}
		rname, next2, err := wirename.Decode(buf, next)
		if err != nil {
			return Unknown{TypeCode: rrtype, Raw: append([]byte(nil), buf[offset:offset+rdlength]...)}, nil
		}
		if next2+20 > len(buf) {
			return Unknown{TypeCode: rrtype, Raw: append([]byte(nil), buf[offset:offset+rdlength]...)}, nil
		}
		return SOA{
			MName:   mname,
			RName:   rname,
			Serial:  be32(buf, next2),
			Refresh: be32(buf, next2+4),
			Retry:   be32(buf, next2+8),
			Expire:  be32(buf, next2+12),
			Minimum: be32(buf, next2+16),
		}, nil
	default:
		return Unknown{TypeCode: rrtype, Raw: append([]byte(nil), buf[offset:offset+rdlength]...)}, nil
	}
}

func be32(buf []byte, offset int) uint32 {
	return uint32(buf[offset])<<24 | uint32(buf[offset+1])<<16 | uint32(buf[offset+2])<<8 | uint32(buf[offset+3])
}

func putBE32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
