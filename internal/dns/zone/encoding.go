package zone

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/lucaspiller/dnsd/internal/dns/common/names"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/rrdata"
)

// encodeValue turns a zone file's text representation of a record's value
// into wire-format RDATA, by building the matching rrdata type and calling
// its Encode method. This keeps the zone-file text grammar and the wire
// format in a single place per type, rather than duplicating field layouts.
func encodeValue(rrtype domain.RRType, value string) ([]byte, error) {
	switch rrtype {
	case domain.RRTypeA:
		ip := net.ParseIP(value).To4()
		if ip == nil {
			return nil, fmt.Errorf("invalid A record address %q", value)
		}
		return rrdata.A{Address: ip}.Encode()

	case domain.RRTypeAAAA:
		ip := net.ParseIP(value)
		if ip == nil || ip.To4() != nil {
			return nil, fmt.Errorf("invalid AAAA record address %q", value)
		}
		return rrdata.AAAA{Address: ip}.Encode()

	case domain.RRTypeNS:
		return rrdata.NS{Target: names.Canonical(value)}.Encode()

	case domain.RRTypeCNAME:
		return rrdata.CNAME{Target: names.Canonical(value)}.Encode()

	case domain.RRTypePTR:
		return rrdata.PTR{Target: names.Canonical(value)}.Encode()

	case domain.RRTypeMX:
		parts := strings.Fields(value)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid MX record %q, expected \"preference exchange\"", value)
		}
		pref, err := strconv.ParseUint(parts[0], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid MX preference %q: %w", parts[0], err)
		}
		return rrdata.MX{Preference: uint16(pref), Exchange: names.Canonical(parts[1])}.Encode()

	case domain.RRTypeSOA:
		parts := strings.Fields(value)
		if len(parts) != 7 {
			return nil, fmt.Errorf("invalid SOA record %q, expected 7 fields", value)
		}
		nums := make([]uint32, 5)
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseUint(parts[i+2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid SOA field %q: %w", parts[i+2], err)
			}
			nums[i] = uint32(v)
		}
		return rrdata.SOA{
			MName:   names.Canonical(parts[0]),
			RName:   names.Canonical(parts[1]),
			Serial:  nums[0],
			Refresh: nums[1],
			Retry:   nums[2],
			Expire:  nums[3],
			Minimum: nums[4],
		}.Encode()

	case domain.RRTypeTXT:
		// Multiple character-strings may be given separated by semicolons.
		var strs []string
		for _, seg := range strings.Split(value, ";") {
			strs = append(strs, strings.TrimSpace(seg))
		}
		return rrdata.TXT{Strings: strs}.Encode()

	case domain.RRTypeHINFO:
		parts := strings.SplitN(value, " ", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid HINFO record %q, expected \"cpu os\"", value)
		}
		return rrdata.HINFO{CPU: parts[0], OS: parts[1]}.Encode()

	case domain.RRTypeWKS:
		parts := strings.Fields(value)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid WKS record %q, expected \"address protocol [ports...]\"", value)
		}
		ip := net.ParseIP(parts[0]).To4()
		if ip == nil {
			return nil, fmt.Errorf("invalid WKS record address %q", parts[0])
		}
		protocol, err := strconv.ParseUint(parts[1], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid WKS protocol %q: %w", parts[1], err)
		}
		var maxPort int
		ports := make([]int, 0, len(parts)-2)
		for _, p := range parts[2:] {
			port, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("invalid WKS port %q: %w", p, err)
			}
			ports = append(ports, port)
			if port > maxPort {
				maxPort = port
			}
		}
		bitmap := make([]byte, maxPort/8+1)
		for _, port := range ports {
			bitmap[port/8] |= 1 << (7 - uint(port%8))
		}
		return rrdata.WKS{Address: ip, Protocol: uint8(protocol), Bitmap: bitmap}.Encode()

	default:
		return nil, fmt.Errorf("record type %s cannot be encoded from zone file text", rrtype)
	}
}
