// Package apex extracts the registrable "apex" domain (effective TLD+1) of a
// DNS name, used to group blocklist hits for logging without leaking full
// query names into aggregate counters.
package apex

import (
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/lucaspiller/dnsd/internal/dns/common/names"
)

// Of returns the registrable domain of name. If name has no recognized
// public suffix (a bare TLD, an unlisted suffix, a single label) it falls
// back to the canonicalized name itself.
func Of(name string) string {
	cn := strings.TrimSuffix(names.Canonical(name), ".")
	if cn == "" {
		return "."
	}
	apexDomain, err := publicsuffix.EffectiveTLDPlusOne(cn)
	if err != nil {
		return cn
	}
	return apexDomain
}
