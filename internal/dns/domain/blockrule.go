package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucaspiller/dnsd/internal/dns/common/names"
)

// BlockRuleKind defines how a rule matches domains.
type BlockRuleKind uint8

const (
	// BlockRuleExact matches only the exact domain.
	BlockRuleExact BlockRuleKind = iota
	// BlockRuleSuffix matches the domain and all its subdomains (apex-inclusive).
	BlockRuleSuffix
)

// String returns a stable string representation of the rule kind.
func (k BlockRuleKind) String() string {
	switch k {
	case BlockRuleExact:
		return "exact"
	case BlockRuleSuffix:
		return "suffix"
	default:
		return fmt.Sprintf("BlockRuleKind(%d)", k)
	}
}

// ParseBlockRuleKind converts a string into a BlockRuleKind. Accepts "exact"
// or "suffix", case-insensitive.
func ParseBlockRuleKind(s string) (BlockRuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact":
		return BlockRuleExact, nil
	case "suffix":
		return BlockRuleSuffix, nil
	default:
		return 0, fmt.Errorf("unsupported block rule kind: %q", s)
	}
}

// BlockRule is a single blocking rule sourced from a file or feed.
type BlockRule struct {
	Name    string // canonical domain, e.g. "example.com."
	Kind    BlockRuleKind
	Source  string // feed/file identifier
	AddedAt time.Time
}

// NewBlockRule constructs a BlockRule and validates its fields.
func NewBlockRule(name string, kind BlockRuleKind, source string, addedAt time.Time) (BlockRule, error) {
	r := BlockRule{
		Name:    names.Canonical(name),
		Kind:    kind,
		Source:  strings.TrimSpace(source),
		AddedAt: addedAt,
	}
	if err := r.Validate(); err != nil {
		return BlockRule{}, err
	}
	return r, nil
}

// Validate checks the BlockRule for required fields and supported values.
func (r BlockRule) Validate() error {
	if r.Name == "" || r.Name == "." {
		return fmt.Errorf("rule name must not be empty")
	}
	if r.Source == "" {
		return fmt.Errorf("rule source must not be empty")
	}
	if r.AddedAt.IsZero() {
		return fmt.Errorf("rule addedAt must be set")
	}
	switch r.Kind {
	case BlockRuleExact, BlockRuleSuffix:
	default:
		return fmt.Errorf("unsupported block rule kind: %d", r.Kind)
	}
	return nil
}

// IsExact reports whether the rule kind is exact.
func (r BlockRule) IsExact() bool { return r.Kind == BlockRuleExact }

// IsSuffix reports whether the rule kind is suffix (apex-inclusive).
func (r BlockRule) IsSuffix() bool { return r.Kind == BlockRuleSuffix }

// BlockDecision is the outcome of evaluating a name against the blocklist.
type BlockDecision struct {
	Blocked     bool
	MatchedRule string
	Source      string
	Kind        BlockRuleKind
}

// IsBlocked is a convenience accessor.
func (d BlockDecision) IsBlocked() bool { return d.Blocked }

// AllowDecision returns a not-blocked decision.
func AllowDecision() BlockDecision { return BlockDecision{Blocked: false} }
