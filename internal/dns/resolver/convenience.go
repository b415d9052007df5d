package resolver

import (
	"context"
	"net"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/rrdata"
)

// ResolveA resolves qname's A records. A valid response with no matching
// records (NOERROR, empty answer) or an NXDOMAIN response yields an empty,
// non-nil slice rather than an error; only a resolver failure mode or an
// RCode other than NOERROR and NXDOMAIN is surfaced as an error.
func (r *Resolver) ResolveA(ctx context.Context, qname string) ([]net.IP, error) {
	resp, err := r.Query(ctx, qname, domain.RRTypeA, domain.RRClassIN)
	if err != nil {
		return nil, err
	}
	if err := rcodeError(resp); err != nil {
		return nil, err
	}
	out := make([]net.IP, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		if rr.Type != domain.RRTypeA {
			continue
		}
		typed, err := rrdata.FromRData(rr.Type, rr.Class, rr.RData)
		if err != nil {
			continue
		}
		if a, ok := typed.(rrdata.A); ok {
			out = append(out, a.Address)
		}
	}
	return out, nil
}

// ResolveAAAA resolves qname's AAAA records (RFC 3596).
func (r *Resolver) ResolveAAAA(ctx context.Context, qname string) ([]net.IP, error) {
	resp, err := r.Query(ctx, qname, domain.RRTypeAAAA, domain.RRClassIN)
	if err != nil {
		return nil, err
	}
	if err := rcodeError(resp); err != nil {
		return nil, err
	}
	out := make([]net.IP, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		if rr.Type != domain.RRTypeAAAA {
			continue
		}
		typed, err := rrdata.FromRData(rr.Type, rr.Class, rr.RData)
		if err != nil {
			continue
		}
		if aaaa, ok := typed.(rrdata.AAAA); ok {
			out = append(out, aaaa.Address)
		}
	}
	return out, nil
}

// ResolveCNAME resolves qname's CNAME target, if any.
func (r *Resolver) ResolveCNAME(ctx context.Context, qname string) (string, bool, error) {
	resp, err := r.Query(ctx, qname, domain.RRTypeCNAME, domain.RRClassIN)
	if err != nil {
		return "", false, err
	}
	if err := rcodeError(resp); err != nil {
		return "", false, err
	}
	for _, rr := range resp.Answer {
		if rr.Type != domain.RRTypeCNAME {
			continue
		}
		typed, err := rrdata.FromRData(rr.Type, rr.Class, rr.RData)
		if err != nil {
			continue
		}
		if c, ok := typed.(rrdata.CNAME); ok {
			return c.Target, true, nil
		}
	}
	return "", false, nil
}

// ResolveMX resolves qname's MX records.
func (r *Resolver) ResolveMX(ctx context.Context, qname string) ([]rrdata.MX, error) {
	resp, err := r.Query(ctx, qname, domain.RRTypeMX, domain.RRClassIN)
	if err != nil {
		return nil, err
	}
	if err := rcodeError(resp); err != nil {
		return nil, err
	}
	out := make([]rrdata.MX, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		if rr.Type != domain.RRTypeMX {
			continue
		}
		typed, err := rrdata.FromRData(rr.Type, rr.Class, rr.RData)
		if err != nil {
			continue
		}
		if mx, ok := typed.(rrdata.MX); ok {
			out = append(out, mx)
		}
	}
	return out, nil
}

// ResolveTXT resolves qname's TXT records, flattened to their string chunks.
func (r *Resolver) ResolveTXT(ctx context.Context, qname string) ([]string, error) {
	resp, err := r.Query(ctx, qname, domain.RRTypeTXT, domain.RRClassIN)
	if err != nil {
		return nil, err
	}
	if err := rcodeError(resp); err != nil {
		return nil, err
	}
	var out []string
	for _, rr := range resp.Answer {
		if rr.Type != domain.RRTypeTXT {
			continue
		}
		typed, err := rrdata.FromRData(rr.Type, rr.Class, rr.RData)
		if err != nil {
			continue
		}
		if txt, ok := typed.(rrdata.TXT); ok {
			out = append(out, txt.Strings...)
		}
	}
	return out, nil
}

// ResolveNS resolves qname's NS records.
func (r *Resolver) ResolveNS(ctx context.Context, qname string) ([]string, error) {
	resp, err := r.Query(ctx, qname, domain.RRTypeNS, domain.RRClassIN)
	if err != nil {
		return nil, err
	}
	if err := rcodeError(resp); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		if rr.Type != domain.RRTypeNS {
			continue
		}
		typed, err := rrdata.FromRData(rr.Type, rr.Class, rr.RData)
		if err != nil {
			continue
		}
		if ns, ok := typed.(rrdata.NS); ok {
			out = append(out, ns.Target)
		}
	}
	return out, nil
}

// rcodeError translates a non-NOERROR final response into an error, except
// NXDOMAIN which callers are expected to treat as "no such name" via the
// empty result rather than an error path.
func rcodeError(resp domain.Message) error {
	switch resp.Flags.RCode {
	case domain.RCodeNoError, domain.RCodeNXDomain:
		return nil
	default:
		return &RCodeError{RCode: resp.Flags.RCode}
	}
}

// RCodeError reports a non-recoverable RCode returned by the resolution
// chain (e.g. SERVFAIL, FORMERR) that isn't itself a resolver failure mode.
type RCodeError struct {
	RCode domain.RCode
}

func (e *RCodeError) Error() string {
	return "resolver: upstream returned " + e.RCode.String()
}
