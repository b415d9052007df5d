package domain

// Opcode is the 4-bit DNS operation code (RFC 1035 §4.1.1).
type Opcode uint8

const (
	OpcodeQuery  Opcode = 0
	OpcodeIQuery Opcode = 1
	OpcodeStatus Opcode = 2
)

// Flags carries the boolean and small-integer fields of the DNS header,
// independent of their bit packing on the wire (that packing lives in
// package wire).
type Flags struct {
	QR     bool // 0 = query, 1 = response
	Opcode Opcode
	AA     bool // authoritative answer
	TC     bool // truncated
	RD     bool // recursion desired
	RA     bool // recursion available
	Z      uint8
	RCode  RCode
}

// Message is a complete DNS message: a header (represented here as ID+Flags,
// with section counts derived from the section slices) plus the four record
// sections. The section slices are the source of truth; counts are
// reconciled from them on both encode and decode.
type Message struct {
	ID         uint16
	Flags      Flags
	Question   []Question
	Answer     []ResourceRecord
	Authority  []ResourceRecord
	Additional []ResourceRecord
}

// NewQuery builds a minimal outbound query message: one question, RD set,
// everything else zeroed.
func NewQuery(id uint16, q Question) Message {
	return Message{
		ID:       id,
		Flags:    Flags{RD: true},
		Question: []Question{q},
	}
}

// NewErrorResponse builds a response message carrying only an RCode, echoing
// the request's id and question section (RFC 1035 requires the question be
// echoed even on error, so clients can match the response to their query).
func NewErrorResponse(id uint16, question []Question, rcode RCode) Message {
	return Message{
		ID:       id,
		Flags:    Flags{QR: true, RCode: rcode},
		Question: question,
	}
}
