package resolver

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/lucaspiller/dnsd/internal/dns/common/apex"
	"github.com/lucaspiller/dnsd/internal/dns/common/clock"
	"github.com/lucaspiller/dnsd/internal/dns/common/names"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/rrdata"
	"github.com/lucaspiller/dnsd/internal/dns/transport"
	"github.com/lucaspiller/dnsd/internal/dns/wire"
)

// Options configures a Resolver.
type Options struct {
	Cache        Cache
	Blocklist    Blocklist // optional; nil disables blocklist checks
	Transport    Transport
	Logger       Logger
	QueryTimeout time.Duration // per-nameserver query timeout; defaults to 2s
	RootServers  []net.IP      // defaults to the IANA root servers
	Clock        clock.Clock   // defaults to the system clock
}

// Resolver implements the iterative recursive resolution algorithm: starting
// from a root (or configured) nameserver set, it walks referrals and CNAME
// chains toward an answer, consulting a cache and an optional blocklist
// along the way.
type Resolver struct {
	cache       Cache
	blocklist   Blocklist
	transport   Transport
	logger      Logger
	timeout     time.Duration
	rootServers []net.IP
	clock       clock.Clock
}

// NewResolver constructs a Resolver from opts.
func NewResolver(opts Options) *Resolver {
	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	roots := opts.RootServers
	if roots == nil {
		roots = RootServers()
	}
	c := opts.Clock
	if c == nil {
		c = clock.RealClock{}
	}
	return &Resolver{
		cache:       opts.Cache,
		blocklist:   opts.Blocklist,
		transport:   opts.Transport,
		logger:      opts.Logger,
		timeout:     timeout,
		rootServers: roots,
		clock:       c,
	}
}

// Query resolves qname/qtype/qclass iteratively, returning the final
// message received (or synthesized) for the query. The returned message's
// RCode carries the outcome (NoError, NXDomain, ...); a non-nil error is
// only returned for the resolver's own failure modes: a CNAME loop, the
// iteration/hop safety caps, or exhausting every reachable nameserver.
func (r *Resolver) Query(ctx context.Context, qname string, qtype domain.RRType, qclass domain.RRClass) (domain.Message, error) {
	q, err := domain.NewQuestion(qname, qtype, qclass)
	if err != nil {
		return domain.Message{}, err
	}

	if r.blocklist != nil {
		if d := r.blocklist.Decide(q.Name); d.IsBlocked() {
			r.logf("Info", "blocked query", map[string]any{"apex": apex.Of(q.Name), "rule": d.MatchedRule})
			return domain.NewErrorResponse(0, []domain.Question{q}, domain.RCodeNXDomain), nil
		}
	}

	nameservers := append([]net.IP(nil), r.rootServers...)
	cnameChain := make([]domain.ResourceRecord, 0, 2)
	visited := map[string]bool{q.Name: true}
	current := q
	depth := 0

	for iteration := 0; iteration < maxIterations; iteration++ {
		if records, ok := r.cache.Get(current.CacheKey()); ok {
			answers := append(append([]domain.ResourceRecord(nil), cnameChain...), records...)
			resp := answerFromCache(q, answers)
			return resp, nil
		}

		resp, state, queryErr := r.queryNameservers(ctx, current, nameservers)
		if queryErr != nil {
			return domain.Message{}, queryErr
		}

		switch state {
		case Done:
			for _, rr := range cnameChain {
				r.cache.Set([]domain.ResourceRecord{rr})
			}
			if len(resp.Answer) > 0 {
				r.cache.Set(dedupeByKey(resp.Answer))
			}
			answers := append(append([]domain.ResourceRecord(nil), cnameChain...), resp.Answer...)
			resp.Question = []domain.Question{q}
			resp.Answer = answers
			return resp, nil

		case FollowingCNAME:
			target, ok := cnameTarget(resp, current.Name)
			if !ok {
				return domain.Message{}, fmt.Errorf("resolver: CNAME state without a resolvable target")
			}
			cnameChain = append(cnameChain, cnameRecordFor(resp, current.Name))
			depth++
			if depth > maxCnameDepth {
				return domain.Message{}, ErrIterationLimit
			}
			if visited[target] {
				return domain.Message{}, ErrCnameLoop
			}
			visited[target] = true
			next, err := domain.NewQuestion(target, current.Type, current.Class)
			if err != nil {
				return domain.Message{}, err
			}
			current = next
			nameservers = append([]net.IP(nil), r.rootServers...)
			continue

		case ResolvingGlue:
			nextServers, err := r.resolveReferral(ctx, resp)
			if err != nil {
				return domain.Message{}, err
			}
			if len(nextServers) == 0 {
				return domain.Message{}, ErrNoReachableNameserver
			}
			nameservers = nextServers
			continue

		case Failed:
			resp.Question = []domain.Question{q}
			return resp, nil

		default:
			return domain.Message{}, fmt.Errorf("resolver: unexpected state %s", state)
		}
	}

	return domain.Message{}, ErrIterationLimit
}

// queryNameservers tries each candidate in order, discarding any response
// whose id does not match the freshly generated transaction id, and
// classifies the first usable response.
func (r *Resolver) queryNameservers(ctx context.Context, q domain.Question, servers []net.IP) (domain.Message, State, error) {
	for _, ip := range servers {
		msg, err := r.queryOne(ctx, q, ip)
		if err != nil {
			r.logf("Debug", "nameserver query failed", map[string]any{"ns": ip.String(), "err": err.Error()})
			continue
		}
		state, resp := classify(msg, q)
		return resp, state, nil
	}
	return domain.Message{}, Failed, ErrNoReachableNameserver
}

// queryOne sends a single query to ip and returns the decoded response,
// discarding it (as an error) if the response id doesn't match the id this
// call generated.
func (r *Resolver) queryOne(ctx context.Context, q domain.Question, ip net.IP) (domain.Message, error) {
	id, err := randomID()
	if err != nil {
		return domain.Message{}, err
	}
	query := domain.NewQuery(id, q)
	buf, err := wire.Encode(query)
	if err != nil {
		return domain.Message{}, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	respBytes, err := r.transport.Send(sendCtx, buf, transport.Endpoint{IP: ip, Port: 53, Proto: transport.ProtoUDP})
	if err != nil {
		return domain.Message{}, err
	}
	resp, err := wire.Decode(respBytes, r.clock.Now())
	if err != nil {
		return domain.Message{}, err
	}
	if resp.ID != id {
		return domain.Message{}, fmt.Errorf("resolver: response id %d does not match query id %d", resp.ID, id)
	}
	return resp, nil
}

// classify determines which branch of the iterative algorithm a response
// falls into: a direct answer, a CNAME to follow, a referral to descend
// into, or a terminal failure (NXDOMAIN or empty answer with no referral,
// i.e. NameError).
func classify(resp domain.Message, q domain.Question) (State, domain.Message) {
	for _, rr := range resp.Answer {
		if rr.Type == q.Type && namesEqual(rr.Name, q.Name) {
			return Done, resp
		}
	}
	if target, ok := cnameTarget(resp, q.Name); ok && target != "" {
		return FollowingCNAME, resp
	}
	if len(resp.Answer) > 0 {
		// Answer present but not matching the question type/name directly
		// (e.g. a CNAME chain with no typed target found) — treat any
		// remaining answers as the final result rather than failing.
		return Done, resp
	}
	if hasReferral(resp) {
		return ResolvingGlue, resp
	}
	return Failed, resp
}

func hasReferral(resp domain.Message) bool {
	for _, rr := range resp.Authority {
		if rr.Type == domain.RRTypeNS {
			return true
		}
	}
	return false
}

func cnameTarget(resp domain.Message, owner string) (string, bool) {
	for _, rr := range resp.Answer {
		if rr.Type != domain.RRTypeCNAME || !namesEqual(rr.Name, owner) {
			continue
		}
		rd, err := rrdata.FromRData(rr.Type, rr.Class, rr.RData)
		if err != nil {
			continue
		}
		cname, ok := rd.(rrdata.CNAME)
		if !ok {
			continue
		}
		return cname.Target, true
	}
	return "", false
}

func cnameRecordFor(resp domain.Message, owner string) domain.ResourceRecord {
	for _, rr := range resp.Answer {
		if rr.Type == domain.RRTypeCNAME && namesEqual(rr.Name, owner) {
			return rr
		}
	}
	return domain.ResourceRecord{}
}

// resolveReferral extracts the delegated nameservers from an authority
// section and resolves each to an address, preferring glue records already
// present in the additional section and falling back to a fresh recursive A
// lookup otherwise.
func (r *Resolver) resolveReferral(ctx context.Context, resp domain.Message) ([]net.IP, error) {
	var targets []string
	for _, rr := range resp.Authority {
		if rr.Type != domain.RRTypeNS {
			continue
		}
		rd, err := rrdata.FromRData(rr.Type, rr.Class, rr.RData)
		if err != nil {
			continue
		}
		ns, ok := rd.(rrdata.NS)
		if !ok {
			continue
		}
		targets = append(targets, ns.Target)
	}

	var addrs []net.IP
	for _, target := range targets {
		if glue := glueAddresses(resp, target); len(glue) > 0 {
			addrs = append(addrs, glue...)
			continue
		}
		resolved, err := r.Query(ctx, target, domain.RRTypeA, domain.RRClassIN)
		if err != nil {
			continue
		}
		addrs = append(addrs, addressesFromAnswer(resolved.Answer)...)
	}
	return addrs, nil
}

func glueAddresses(resp domain.Message, target string) []net.IP {
	var out []net.IP
	for _, rr := range resp.Additional {
		if rr.Type != domain.RRTypeA || !namesEqual(rr.Name, target) {
			continue
		}
		if ip := ipFromA(rr.RData); ip != nil {
			out = append(out, ip)
		}
	}
	return out
}

func addressesFromAnswer(rrs []domain.ResourceRecord) []net.IP {
	var out []net.IP
	for _, rr := range rrs {
		if rr.Type != domain.RRTypeA {
			continue
		}
		if ip := ipFromA(rr.RData); ip != nil {
			out = append(out, ip)
		}
	}
	return out
}

func ipFromA(rdata []byte) net.IP {
	if len(rdata) != 4 {
		return nil
	}
	return net.IPv4(rdata[0], rdata[1], rdata[2], rdata[3])
}

func answerFromCache(q domain.Question, records []domain.ResourceRecord) domain.Message {
	return domain.Message{
		Flags:    domain.Flags{QR: true, RCode: domain.RCodeNoError},
		Question: []domain.Question{q},
		Answer:   records,
	}
}

func dedupeByKey(records []domain.ResourceRecord) []domain.ResourceRecord {
	if len(records) == 0 {
		return records
	}
	key := records[0].CacheKey()
	out := make([]domain.ResourceRecord, 0, len(records))
	for _, rr := range records {
		if rr.CacheKey() == key {
			out = append(out, rr)
		}
	}
	return out
}

func namesEqual(a, b string) bool {
	return names.Equal(a, b)
}

func randomID() (uint16, error) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func (r *Resolver) logf(level string, msg string, fields map[string]any) {
	if r.logger == nil {
		return
	}
	switch level {
	case "Debug":
		r.logger.Debug(fields, msg)
	case "Info":
		r.logger.Info(fields, msg)
	case "Warn":
		r.logger.Warn(fields, msg)
	case "Error":
		r.logger.Error(fields, msg)
	}
}
