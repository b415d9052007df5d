// Package names provides canonicalization and matching helpers for DNS domain
// names, shared by the message model, zone store, and resolver.
package names

import "strings"

// Canonical returns a DNS name in canonical form: lowercased, trimmed of
// surrounding whitespace, with a single trailing dot denoting the root.
// The empty string and "." both canonicalize to ".".
func Canonical(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	if name == "" {
		return "."
	}
	return name + "."
}

// Labels splits a canonical name into its ordered labels, root-most last.
// The root name "." yields an empty slice.
func Labels(canonicalName string) []string {
	trimmed := strings.TrimSuffix(canonicalName, ".")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, ".")
}

// Equal reports whether two names are equal under case-insensitive ASCII comparison.
func Equal(a, b string) bool {
	return Canonical(a) == Canonical(b)
}

// IsSubdomainOrSelf reports whether name is equal to origin, or a descendant of
// it, comparing label sequences from the root inward.
func IsSubdomainOrSelf(name, origin string) bool {
	nameLabels := Labels(Canonical(name))
	originLabels := Labels(Canonical(origin))
	if len(originLabels) > len(nameLabels) {
		return false
	}
	// compare suffixes: origin's labels must match the tail of name's labels
	offset := len(nameLabels) - len(originLabels)
	for i, l := range originLabels {
		if l != nameLabels[offset+i] {
			return false
		}
	}
	return true
}

// LongestSuffixMatch returns the entry in candidates whose name is the
// longest (most specific) suffix of qname, and true if any candidate matches.
// Candidates that are not a suffix of qname at all are ignored.
func LongestSuffixMatch(qname string, candidates []string) (string, bool) {
	best := ""
	bestLabels := -1
	found := false
	for _, c := range candidates {
		if !IsSubdomainOrSelf(qname, c) {
			continue
		}
		n := len(Labels(Canonical(c)))
		if n > bestLabels {
			bestLabels = n
			best = c
			found = true
		}
	}
	return best, found
}
