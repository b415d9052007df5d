package authoritative

import (
	"strings"

	"github.com/lucaspiller/dnsd/internal/dns/common/apex"
	"github.com/lucaspiller/dnsd/internal/dns/common/log"
	"github.com/lucaspiller/dnsd/internal/dns/common/names"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/rrdata"
	"github.com/lucaspiller/dnsd/internal/dns/zone"
)

// Responder answers queries out of a Zone Store, consulting a Blocklist
// first when one is configured.
type Responder struct {
	zones     ZoneStore
	blocklist Blocklist
	logger    log.Logger
}

// Options configures a Responder.
type Options struct {
	Zones     ZoneStore
	Blocklist Blocklist
	Logger    log.Logger
}

// New constructs a Responder. A nil Blocklist disables blocklist
// consultation entirely.
func New(opts Options) *Responder {
	return &Responder{zones: opts.Zones, blocklist: opts.Blocklist, logger: opts.Logger}
}

// Respond builds a response message for req per the authoritative
// response-construction algorithm: copy id and echo questions, answer or
// refer or NXDOMAIN per question, then reconcile section counts.
func (r *Responder) Respond(req domain.Message) domain.Message {
	resp := domain.Message{
		ID: req.ID,
		Flags: domain.Flags{
			QR:     true,
			Opcode: req.Flags.Opcode,
			AA:     true,
			RA:     false,
			RD:     req.Flags.RD,
			TC:     false,
			Z:      0,
			RCode:  domain.RCodeNoError,
		},
		Question: req.Question,
	}

	if len(req.Question) == 0 {
		resp.Flags.RCode = domain.RCodeFormErr
		return resp
	}

	sawAnswer := false
	sawReferral := false
	for _, q := range req.Question {
		if r.blocklist != nil {
			if d := r.blocklist.Decide(q.Name); d.IsBlocked() {
				if r.logger != nil {
					r.logger.Info(map[string]any{"apex": apex.Of(q.Name), "rule": d.MatchedRule}, "blocked query")
				}
				continue
			}
		}

		z, ok := r.zones.SelectZone(q.Name)
		if !ok {
			continue
		}

		if recs, ok := z.Lookup(q.Name, q.Type); ok {
			resp.Answer = append(resp.Answer, recs...)
			sawAnswer = true
			continue
		}

		if q.Type != domain.RRTypeCNAME {
			if cname, ok := z.Lookup(q.Name, domain.RRTypeCNAME); ok {
				resp.Answer = append(resp.Answer, cname...)
				sawAnswer = true
				r.followCNAME(&resp, cname, q.Type)
				continue
			}
		}

		if ns, ok := ancestorNS(z, q.Name); ok {
			resp.Authority = append(resp.Authority, ns...)
			sawReferral = true
		}
	}

	switch {
	case sawAnswer:
		resp.Flags.RCode = domain.RCodeNoError
	case sawReferral:
		resp.Flags.RCode = domain.RCodeNoError
	default:
		resp.Flags.RCode = domain.RCodeNXDomain
	}

	return resp
}

// followCNAME appends the target's records to resp.Answer when the alias
// target also falls within a zone this Responder is authoritative for. An
// owner name with a CNAME has no other data, so the caller must chase the
// alias itself rather than expect Lookup to do it.
func (r *Responder) followCNAME(resp *domain.Message, cname []domain.ResourceRecord, qtype domain.RRType) {
	if len(cname) == 0 {
		return
	}
	rd, err := rrdata.FromRData(cname[0].Type, cname[0].Class, cname[0].RData)
	if err != nil {
		return
	}
	target, ok := rd.(rrdata.CNAME)
	if !ok {
		return
	}
	tz, ok := r.zones.SelectZone(target.Target)
	if !ok {
		return
	}
	if recs, ok := tz.Lookup(target.Target, qtype); ok {
		resp.Answer = append(resp.Answer, recs...)
	}
}

// ancestorNS looks for NS records at a proper ancestor of name within z,
// walking from the immediate parent up to (and including) the zone origin.
func ancestorNS(z *zone.Zone, name string) ([]domain.ResourceRecord, bool) {
	cn := names.Canonical(name)
	for {
		idx := strings.IndexByte(cn, '.')
		if idx < 0 {
			return nil, false
		}
		parent := cn[idx+1:]
		if parent == "" {
			return nil, false
		}
		if ns, ok := z.NS(parent); ok {
			return ns, true
		}
		if parent == z.Origin {
			return nil, false
		}
		cn = parent
	}
}
