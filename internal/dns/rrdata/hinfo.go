package rrdata

import (
	"fmt"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

// HINFO is the RDATA of a HINFO record: the CPU and OS types of the host
// identified by the owner name.
type HINFO struct {
	CPU string
	OS  string
}

func (HINFO) Type() domain.RRType { return domain.RRTypeHINFO }

func (h HINFO) Encode() ([]byte, error) {
	if len(h.CPU) > 255 || len(h.OS) > 255 {
		return nil, fmt.Errorf("HINFO character-string exceeds 255 octets")
	}
	out := make([]byte, 0, 2+len(h.CPU)+len(h.OS))
	out = append(out, byte(len(h.CPU)))
	out = append(out, h.CPU...)
	out = append(out, byte(len(h.OS)))
	out = append(out, h.OS...)
	return out, nil
}

func decodeHINFO(raw []byte) (RData, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("HINFO record truncated: missing CPU length")
	}
	cpuLen := int(raw[0])
	if 1+cpuLen > len(raw) {
		return nil, fmt.Errorf("HINFO CPU string extends past end of rdata")
	}
	cpu := string(raw[1 : 1+cpuLen])
	rest := raw[1+cpuLen:]
	if len(rest) < 1 {
		return nil, fmt.Errorf("HINFO record truncated: missing OS length")
	}
	osLen := int(rest[0])
	if 1+osLen > len(rest) {
		return nil, fmt.Errorf("HINFO OS string extends past end of rdata")
	}
	os := string(rest[1 : 1+osLen])
	return HINFO{CPU: cpu, OS: os}, nil
}
