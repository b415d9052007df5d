// Package wire implements the DNS wire format defined by RFC 1035 §4: the
// 12-octet header, the flag bit layout, and section framing for questions
// and resource records. RDATA is kept as an octet string here, except that
// compressed names inside NS, CNAME, PTR, MX and SOA RDATA are expanded on
// decode; interpreting it is the rrdata package's job.
package wire

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/wire/wirename"
)

const headerLength = 12

// TruncatedError reports that buf ended before a required field could be read.
type TruncatedError struct {
	Reason string
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated message: %s", e.Reason)
}

// SectionCountMismatchError reports that a header's declared section count
// did not match the number of records actually present in the message.
type SectionCountMismatchError struct {
	Section  string
	Declared int
	Actual   int
}

func (e *SectionCountMismatchError) Error() string {
	return fmt.Sprintf("%s count mismatch: header declared %d, decoded %d", e.Section, e.Declared, e.Actual)
}

// MalformedNameError wraps a name-decoding failure encountered while
// decoding a message, reported by wirename.
type MalformedNameError struct {
	Reason string
}

func (e *MalformedNameError) Error() string {
	return fmt.Sprintf("malformed name: %s", e.Reason)
}

// Encode serializes a Message into its wire representation. Section counts
// in the header are derived from the length of each section slice, never
// taken on faith from the caller.
func Encode(msg domain.Message) ([]byte, error) {
	if len(msg.Question) > 0xFFFF || len(msg.Answer) > 0xFFFF || len(msg.Authority) > 0xFFFF || len(msg.Additional) > 0xFFFF {
		return nil, fmt.Errorf("section exceeds 65535 records")
	}

	buf := make([]byte, headerLength)
	binary.BigEndian.PutUint16(buf[0:2], msg.ID)
	binary.BigEndian.PutUint16(buf[2:4], encodeFlags(msg.Flags))
	binary.BigEndian.PutUint16(buf[4:6], uint16(len(msg.Question)))
	binary.BigEndian.PutUint16(buf[6:8], uint16(len(msg.Answer)))
	binary.BigEndian.PutUint16(buf[8:10], uint16(len(msg.Authority)))
	binary.BigEndian.PutUint16(buf[10:12], uint16(len(msg.Additional)))

	names := make(map[string]int)

	for _, q := range msg.Question {
		encoded, err := encodeName(q.Name, names, len(buf))
		if err != nil {
			return nil, err
		}
		buf = append(buf, encoded...)
		buf = appendUint16(buf, uint16(q.Type))
		buf = appendUint16(buf, uint16(q.Class))
	}

	for _, section := range [][]domain.ResourceRecord{msg.Answer, msg.Authority, msg.Additional} {
		var err error
		buf, err = encodeRRSection(buf, section, names)
		if err != nil {
			return nil, err
		}
	}

	return buf, nil
}

func encodeRRSection(buf []byte, rrs []domain.ResourceRecord, names map[string]int) ([]byte, error) {
	for _, rr := range rrs {
		encoded, err := encodeName(rr.Name, names, len(buf))
		if err != nil {
			return nil, err
		}
		buf = append(buf, encoded...)
		buf = appendUint16(buf, uint16(rr.Type))
		buf = appendUint16(buf, uint16(rr.Class))
		buf = appendUint32(buf, rr.TTL())
		if len(rr.RData) > 0xFFFF {
			return nil, fmt.Errorf("rdata for %s exceeds 65535 octets", rr.Name)
		}
		buf = appendUint16(buf, uint16(len(rr.RData)))
		buf = append(buf, rr.RData...)
	}
	return buf, nil
}

// encodeName writes name using a backward compression pointer when an
// identical name has already been written earlier in the message, and
// records name's own position for future back-references otherwise.
func encodeName(name string, names map[string]int, posInBuf int) ([]byte, error) {
	if offset, ok := names[name]; ok && offset <= 0x3FFF {
		return []byte{0xC0 | byte(offset>>8), byte(offset)}, nil
	}
	encoded, err := wirename.Encode(name)
	if err != nil {
		return nil, &MalformedNameError{Reason: err.Error()}
	}
	if posInBuf <= 0x3FFF {
		names[name] = posInBuf
	}
	return encoded, nil
}

func appendUint16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func encodeFlags(f domain.Flags) uint16 {
	var v uint16
	if f.QR {
		v |= 1 << 15
	}
	v |= uint16(f.Opcode&0x0F) << 11
	if f.AA {
		v |= 1 << 10
	}
	if f.TC {
		v |= 1 << 9
	}
	if f.RD {
		v |= 1 << 8
	}
	if f.RA {
		v |= 1 << 7
	}
	v |= uint16(f.Z&0x07) << 4
	v |= uint16(f.RCode & 0x0F)
	return v
}

func decodeFlags(v uint16) domain.Flags {
	return domain.Flags{
		QR:     v&(1<<15) != 0,
		Opcode: domain.Opcode((v >> 11) & 0x0F),
		AA:     v&(1<<10) != 0,
		TC:     v&(1<<9) != 0,
		RD:     v&(1<<8) != 0,
		RA:     v&(1<<7) != 0,
		Z:      uint8((v >> 4) & 0x07),
		RCode:  domain.RCode(v & 0x0F),
	}
}

// Decode parses a wire-format message. Section counts in the returned
// Message reflect the records actually decoded. A header that declares more
// records than the buffer holds fails with a TruncatedError rather than
// silently truncating sections; octets after the last declared record are
// not examined.
//
// now is the reference time used to convert each decoded record's TTL into
// an expiry timestamp (records arriving off the wire are always treated as
// cache candidates; only the zone loader constructs authoritative records
// directly).
func Decode(buf []byte, now time.Time) (domain.Message, error) {
	if len(buf) < headerLength {
		return domain.Message{}, &TruncatedError{Reason: "message shorter than 12-octet header"}
	}

	id := binary.BigEndian.Uint16(buf[0:2])
	flags := decodeFlags(binary.BigEndian.Uint16(buf[2:4]))
	qdCount := binary.BigEndian.Uint16(buf[4:6])
	anCount := binary.BigEndian.Uint16(buf[6:8])
	nsCount := binary.BigEndian.Uint16(buf[8:10])
	arCount := binary.BigEndian.Uint16(buf[10:12])

	offset := headerLength

	questions := make([]domain.Question, 0, qdCount)
	for i := 0; i < int(qdCount); i++ {
		q, next, err := decodeQuestion(buf, offset)
		if err != nil {
			return domain.Message{}, fmt.Errorf("question %d: %w", i, err)
		}
		questions = append(questions, q)
		offset = next
	}
	if len(questions) != int(qdCount) {
		return domain.Message{}, &SectionCountMismatchError{Section: "question", Declared: int(qdCount), Actual: len(questions)}
	}

	answers, offset, err := decodeRRSection(buf, offset, int(anCount), now)
	if err != nil {
		return domain.Message{}, fmt.Errorf("answer section: %w", err)
	}
	authority, offset, err := decodeRRSection(buf, offset, int(nsCount), now)
	if err != nil {
		return domain.Message{}, fmt.Errorf("authority section: %w", err)
	}
	additional, _, err := decodeRRSection(buf, offset, int(arCount), now)
	if err != nil {
		return domain.Message{}, fmt.Errorf("additional section: %w", err)
	}

	return domain.Message{
		ID:         id,
		Flags:      flags,
		Question:   questions,
		Answer:     answers,
		Authority:  authority,
		Additional: additional,
	}, nil
}

func decodeQuestion(buf []byte, offset int) (domain.Question, int, error) {
	name, next, err := wirename.Decode(buf, offset)
	if err != nil {
		return domain.Question{}, 0, wrapNameError(err)
	}
	if next+4 > len(buf) {
		return domain.Question{}, 0, &TruncatedError{Reason: "question type/class extends past end of message"}
	}
	qtype := domain.RRType(binary.BigEndian.Uint16(buf[next : next+2]))
	qclass := domain.RRClass(binary.BigEndian.Uint16(buf[next+2 : next+4]))
	q, err := domain.NewQuestion(name, qtype, qclass)
	if err != nil {
		return domain.Question{}, 0, err
	}
	return q, next + 4, nil
}

func decodeRRSection(buf []byte, offset, count int, now time.Time) ([]domain.ResourceRecord, int, error) {
	rrs := make([]domain.ResourceRecord, 0, count)
	for i := 0; i < count; i++ {
		rr, next, err := decodeRR(buf, offset, now)
		if err != nil {
			return nil, 0, fmt.Errorf("record %d: %w", i, err)
		}
		rrs = append(rrs, rr)
		offset = next
	}
	if len(rrs) != count {
		return nil, 0, &SectionCountMismatchError{Declared: count, Actual: len(rrs)}
	}
	return rrs, offset, nil
}

func decodeRR(buf []byte, offset int, now time.Time) (domain.ResourceRecord, int, error) {
	name, next, err := wirename.Decode(buf, offset)
	if err != nil {
		return domain.ResourceRecord{}, 0, wrapNameError(err)
	}
	if next+10 > len(buf) {
		return domain.ResourceRecord{}, 0, &TruncatedError{Reason: "record header extends past end of message"}
	}
	rrtype := domain.RRType(binary.BigEndian.Uint16(buf[next : next+2]))
	rrclass := domain.RRClass(binary.BigEndian.Uint16(buf[next+2 : next+4]))
	ttl := binary.BigEndian.Uint32(buf[next+4 : next+8])
	rdlength := int(binary.BigEndian.Uint16(buf[next+8 : next+10]))
	rdataStart := next + 10
	if rdataStart+rdlength > len(buf) {
		return domain.ResourceRecord{}, 0, &TruncatedError{Reason: "rdata extends past end of message"}
	}
	rdata, err := canonicalizeRData(buf, rrtype, rdataStart, rdlength)
	if err != nil {
		return domain.ResourceRecord{}, 0, err
	}

	rr, err := domain.NewCachedRecord(name, rrtype, rrclass, ttl, rdata, now)
	if err != nil {
		return domain.ResourceRecord{}, 0, err
	}
	return rr, rdataStart + rdlength, nil
}

// canonicalizeRData returns the RDATA for a record starting at rdataStart,
// with rdlength octets. For record types whose RDATA embeds a domain name
// (NS, CNAME, PTR, MX, SOA), any compression pointer used by the wire
// encoding is resolved and the name is re-encoded uncompressed, so a
// ResourceRecord's RData is always self-contained and safe to reinterpret
// later without the original message buffer. This is a
// wire-level concern, not RDATA interpretation: it never inspects field
// semantics beyond where a name begins.
func canonicalizeRData(buf []byte, rrtype domain.RRType, rdataStart, rdlength int) ([]byte, error) {
	rdataEnd := rdataStart + rdlength

	switch rrtype {
	case domain.RRTypeNS, domain.RRTypeCNAME, domain.RRTypePTR:
		name, next, err := wirename.Decode(buf, rdataStart)
		if err != nil {
			return nil, wrapNameError(err)
		}
		if next > rdataEnd {
			return nil, &TruncatedError{Reason: "rdata name extends past declared rdlength"}
		}
		return wirename.Encode(name)

	case domain.RRTypeMX:
		if rdataStart+2 > rdataEnd {
			return nil, &TruncatedError{Reason: "MX rdata shorter than preference field"}
		}
		preference := append([]byte(nil), buf[rdataStart:rdataStart+2]...)
		name, next, err := wirename.Decode(buf, rdataStart+2)
		if err != nil {
			return nil, wrapNameError(err)
		}
		if next > rdataEnd {
			return nil, &TruncatedError{Reason: "MX rdata name extends past declared rdlength"}
		}
		encodedName, err := wirename.Encode(name)
		if err != nil {
			return nil, &MalformedNameError{Reason: err.Error()}
		}
		return append(preference, encodedName...), nil

	case domain.RRTypeSOA:
		mname, next1, err := wirename.Decode(buf, rdataStart)
		if err != nil {
			return nil, wrapNameError(err)
		}
		rname, next2, err := wirename.Decode(buf, next1)
		if err != nil {
			return nil, wrapNameError(err)
		}
		if next2+20 > rdataEnd {
			return nil, &TruncatedError{Reason: "SOA rdata shorter than trailing fixed fields"}
		}
		encodedMName, err := wirename.Encode(mname)
		if err != nil {
			return nil, &MalformedNameError{Reason: err.Error()}
		}
		encodedRName, err := wirename.Encode(rname)
		if err != nil {
			return nil, &MalformedNameError{Reason: err.Error()}
		}
		out := append([]byte(nil), encodedMName...)
		out = append(out, encodedRName...)
		out = append(out, buf[next2:next2+20]...)
		return out, nil

	default:
		return append([]byte(nil), buf[rdataStart:rdataEnd]...), nil
	}
}

func wrapNameError(err error) error {
	switch err.(type) {
	case *wirename.TruncatedError:
		return &TruncatedError{Reason: err.Error()}
	case *wirename.MalformedNameError:
		return &MalformedNameError{Reason: err.Error()}
	default:
		return err
	}
}
