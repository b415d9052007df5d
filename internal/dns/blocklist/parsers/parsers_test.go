package parsers

import (
	"strings"
	"testing"
	"time"

	"github.com/lucaspiller/dnsd/internal/dns/common/log"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

func TestParseHostsFile(t *testing.T) {
	input := `127.0.0.1 localhost
0.0.0.0 ads.example.com tracker.example.com
# comment line
0.0.0.0 *.wild.com .leadingdot.com
0.0.0.0 ads.example.com
`
	rules, err := ParseHostsFile(strings.NewReader(input), "hosts-feed", log.GetLogger(), time.Unix(1000, 0))
	if err != nil {
		t.Fatalf("ParseHostsFile: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2 (localhost dropped for one label, duplicate dropped): %+v", len(rules), rules)
	}
	for _, r := range rules {
		if r.Kind != domain.BlockRuleExact {
			t.Errorf("rule %q kind = %v, want exact", r.Name, r.Kind)
		}
	}
}

func TestParsePlainList(t *testing.T) {
	input := `# whole line comment
exact.example.com
*.suffix.example.com
.alsosuffix.example.com
exact.example.com # trailing comment, duplicate
invalid
`
	rules, err := ParsePlainList(strings.NewReader(input), "plain-feed", log.GetLogger(), time.Unix(1000, 0))
	if err != nil {
		t.Fatalf("ParsePlainList: %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("got %d rules, want 3: %+v", len(rules), rules)
	}

	byName := map[string]domain.BlockRule{}
	for _, r := range rules {
		byName[r.Name] = r
	}
	if r, ok := byName["exact.example.com."]; !ok || r.Kind != domain.BlockRuleExact {
		t.Errorf("expected exact rule for exact.example.com., got %+v ok=%v", r, ok)
	}
	if r, ok := byName["suffix.example.com."]; !ok || r.Kind != domain.BlockRuleSuffix {
		t.Errorf("expected suffix rule for suffix.example.com., got %+v ok=%v", r, ok)
	}
	if r, ok := byName["alsosuffix.example.com."]; !ok || r.Kind != domain.BlockRuleSuffix {
		t.Errorf("expected suffix rule for alsosuffix.example.com., got %+v ok=%v", r, ok)
	}
}
