// Package wirename encodes and decodes DNS domain names in wire format,
// including RFC 1035 §4.1.4 compression pointers. It has no knowledge of
// message framing beyond "a byte buffer with a name starting at some
// offset" so it can be shared by the message codec (for header-level names)
// and the RDATA layer (for names embedded in RDATA, which may themselves be
// compressed against the enclosing message).
package wirename

import (
	"fmt"
	"strings"
)

// maxJumps bounds the number of label+pointer hops followed while decoding a
// single name, guaranteeing termination against hostile input.
const maxJumps = 128

// maxNameLength is the maximum encoded length, in octets, of a domain name
// including length prefixes and the terminating zero label (RFC 1035 §3.1).
const maxNameLength = 255

// maxLabelLength is the maximum length, in octets, of a single label (RFC 1035 §3.1).
const maxLabelLength = 63

// MalformedNameError reports a structurally invalid encoded name.
type MalformedNameError struct {
	Reason string
}

func (e *MalformedNameError) Error() string {
	return fmt.Sprintf("malformed name: %s", e.Reason)
}

// TruncatedError reports that the buffer ended before a field could be read.
type TruncatedError struct {
	Reason string
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated: %s", e.Reason)
}

// Encode encodes a canonical (trailing-dot, lowercase) domain name into wire
// format without compression: length-prefixed labels terminated by a zero
// length label. The empty name / root "." encodes as a single zero byte.
func Encode(name string) ([]byte, error) {
	trimmed := strings.TrimSuffix(name, ".")
	var out []byte
	if trimmed != "" {
		for _, label := range strings.Split(trimmed, ".") {
			if len(label) == 0 {
				return nil, &MalformedNameError{Reason: "empty label"}
			}
			if len(label) > maxLabelLength {
				return nil, &MalformedNameError{Reason: fmt.Sprintf("label %q exceeds %d octets", label, maxLabelLength)}
			}
			out = append(out, byte(len(label)))
			out = append(out, label...)
		}
	}
	out = append(out, 0)
	if len(out) > maxNameLength {
		return nil, &MalformedNameError{Reason: fmt.Sprintf("encoded name exceeds %d octets", maxNameLength)}
	}
	return out, nil
}

// Decode decodes a domain name starting at offset within buf, following
// compression pointers as needed, and returns the canonical name plus the
// offset immediately following the name's own encoding in buf (i.e. NOT
// following any pointer target — callers resume reading right after the
// 2-byte pointer, or after the terminating zero label if there was no
// pointer).
func Decode(buf []byte, offset int) (name string, next int, err error) {
	var labels []string
	jumps := 0
	pos := offset
	firstPos := offset
	sawPointer := false
	totalLen := 0

readLoop:
	for {
		if pos >= len(buf) {
			return "", 0, &TruncatedError{Reason: "name extends past end of buffer"}
		}
		lengthByte := buf[pos]

		switch {
		case lengthByte == 0:
			pos++
			if !sawPointer {
				firstPos = pos
			}
			break readLoop

		case lengthByte&0xC0 == 0xC0:
			if pos+1 >= len(buf) {
				return "", 0, &TruncatedError{Reason: "compression pointer extends past end of buffer"}
			}
			jumps++
			if jumps > maxJumps {
				return "", 0, &MalformedNameError{Reason: "pointer chain exceeds maximum hop count"}
			}
			ptr := int(lengthByte&0x3F)<<8 | int(buf[pos+1])
			if ptr >= pos {
				return "", 0, &MalformedNameError{Reason: "compression pointer does not point strictly backward"}
			}
			if !sawPointer {
				firstPos = pos + 2
			}
			sawPointer = true
			pos = ptr

		case lengthByte&0xC0 != 0:
			return "", 0, &MalformedNameError{Reason: "illegal length byte with reserved high bits set"}

		default:
			labelLen := int(lengthByte)
			if labelLen > maxLabelLength {
				return "", 0, &MalformedNameError{Reason: fmt.Sprintf("label exceeds %d octets", maxLabelLength)}
			}
			pos++
			jumps++
			if jumps > maxJumps {
				return "", 0, &MalformedNameError{Reason: "pointer chain exceeds maximum hop count"}
			}
			if pos+labelLen > len(buf) {
				return "", 0, &TruncatedError{Reason: "label extends past end of buffer"}
			}
			labels = append(labels, string(buf[pos:pos+labelLen]))
			pos += labelLen
			totalLen += labelLen + 1
		}
	}

	if totalLen+1 > maxNameLength {
		return "", 0, &MalformedNameError{Reason: fmt.Sprintf("decoded name exceeds %d octets", maxNameLength)}
	}
	if len(labels) == 0 {
		return ".", firstPos, nil
	}
	return strings.ToLower(strings.Join(labels, ".")) + ".", firstPos, nil
}
