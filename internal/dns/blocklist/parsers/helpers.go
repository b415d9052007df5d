// Package parsers ingests block rules from external feed formats into
// domain.BlockRule values.
package parsers

import (
	"strings"
	"unicode"

	"github.com/lucaspiller/dnsd/internal/dns/common/names"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

// ruleKindFromRaw decides the BlockRuleKind from an uncanonicalized token: a
// "*." or "." prefix marks a suffix (apex-inclusive) rule, anything else is
// exact.
func ruleKindFromRaw(raw string) domain.BlockRuleKind {
	if strings.HasPrefix(raw, "*.") || strings.HasPrefix(raw, ".") {
		return domain.BlockRuleSuffix
	}
	return domain.BlockRuleExact
}

// isValidFQDN reports whether name looks like a plausible fully qualified
// domain name: at most 255 characters, at least two labels, each label 1-63
// characters, and the first label starting with an alphanumeric or "*".
func isValidFQDN(name string) bool {
	if len(name) > 255 {
		return false
	}
	labels := strings.Split(strings.TrimSuffix(name, "."), ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
	}
	first := []rune(labels[0])
	return isAlphaNumeric(first[0]) || isWildcard(first[0])
}

// normalizeDomainName strips a leading suffix-rule marker ("*." or ".") and
// canonicalizes what remains.
func normalizeDomainName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "*.")
	name = strings.TrimPrefix(name, ".")
	return names.Canonical(name)
}

func isAlphaNumeric(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func isWildcard(r rune) bool { return r == '*' }
