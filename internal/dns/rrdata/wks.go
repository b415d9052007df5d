package rrdata

import (
	"fmt"
	"net"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

// WKS is the RDATA of a WKS record: the well-known services supported on a
// particular protocol by a host, represented as a bitmap.
type WKS struct {
	Address  net.IP
	Protocol uint8
	Bitmap   []byte
}

func (WKS) Type() domain.RRType { return domain.RRTypeWKS }

func (w WKS) Encode() ([]byte, error) {
	v4 := w.Address.To4()
	if v4 == nil {
		return nil, fmt.Errorf("WKS record address %v is not a valid IPv4 address", w.Address)
	}
	out := make([]byte, 0, 5+len(w.Bitmap))
	out = append(out, v4...)
	out = append(out, w.Protocol)
	out = append(out, w.Bitmap...)
	return out, nil
}

func decodeWKS(raw []byte) (RData, error) {
	if len(raw) < 5 {
		return nil, fmt.Errorf("WKS record requires at least 5 octets, got %d", len(raw))
	}
	ip := net.IPv4(raw[0], raw[1], raw[2], raw[3])
	protocol := raw[4]
	bitmap := append([]byte(nil), raw[5:]...)
	return WKS{Address: ip, Protocol: protocol, Bitmap: bitmap}, nil
}
