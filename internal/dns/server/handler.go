// Package server wires the wire codec to the Authoritative Responder and
// the Recursive Resolver, deciding per query which one answers: a query
// covered by a locally loaded zone is answered authoritatively; anything
// else falls through to recursive resolution.
package server

import (
	"context"
	"net"

	"github.com/lucaspiller/dnsd/internal/dns/authoritative"
	"github.com/lucaspiller/dnsd/internal/dns/common/clock"
	"github.com/lucaspiller/dnsd/internal/dns/common/log"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/wire"
	"github.com/lucaspiller/dnsd/internal/dns/zone"
)

// Resolver is the subset of *resolver.Resolver the handler depends on.
type Resolver interface {
	Query(ctx context.Context, qname string, qtype domain.RRType, qclass domain.RRClass) (domain.Message, error)
}

// Handler implements transport.Handler: it decodes an inbound query,
// dispatches it to the Authoritative Responder or the Recursive Resolver,
// and re-encodes the answer.
type Handler struct {
	zones     *zone.Store
	responder *authoritative.Responder
	resolver  Resolver
	logger    log.Logger
	clock     clock.Clock
}

// Options configures a Handler.
type Options struct {
	Zones     *zone.Store
	Responder *authoritative.Responder
	Resolver  Resolver
	Logger    log.Logger
	// Clock supplies the reference time used to convert decoded record TTLs
	// into expiry timestamps. Defaults to the system clock.
	Clock clock.Clock
}

// New constructs a Handler.
func New(opts Options) *Handler {
	c := opts.Clock
	if c == nil {
		c = clock.RealClock{}
	}
	return &Handler{
		zones:     opts.Zones,
		responder: opts.Responder,
		resolver:  opts.Resolver,
		logger:    opts.Logger,
		clock:     c,
	}
}

// Handle decodes reqBytes, resolves it, and returns the encoded response.
// It returns ok=false only for a request too malformed to safely answer at
// all (RFC 1035 has no wire format for "reject a query with a broken
// header") or for a response that fails to encode.
func (h *Handler) Handle(ctx context.Context, reqBytes []byte, clientAddr net.Addr) ([]byte, bool) {
	req, err := wire.Decode(reqBytes, h.clock.Now())
	if err != nil {
		h.logf(map[string]any{"err": err.Error(), "client": clientAddr.String()}, "dropping malformed query")
		return nil, false
	}

	var resp domain.Message
	if len(req.Question) == 0 {
		resp = domain.NewErrorResponse(req.ID, req.Question, domain.RCodeFormErr)
	} else {
		q := req.Question[0]
		if _, ok := h.zones.SelectZone(q.Name); ok {
			resp = h.responder.Respond(req)
		} else {
			resolved, err := h.resolver.Query(ctx, q.Name, q.Type, q.Class)
			if err != nil {
				h.logf(map[string]any{"err": err.Error(), "name": q.Name}, "recursive resolution failed")
				resp = domain.NewErrorResponse(req.ID, req.Question, domain.RCodeServFail)
			} else {
				resolved.ID = req.ID
				resolved.Flags.Opcode = req.Flags.Opcode
				resolved.Flags.RD = req.Flags.RD
				resolved.Flags.RA = true
				resolved.Question = req.Question
				resp = resolved
			}
		}
	}

	respBytes, err := wire.Encode(resp)
	if err != nil {
		h.logf(map[string]any{"err": err.Error()}, "failed to encode response")
		return nil, false
	}
	return respBytes, true
}

func (h *Handler) logf(fields map[string]any, msg string) {
	if h.logger == nil {
		return
	}
	h.logger.Warn(fields, msg)
}
