package parsers

import (
	"bufio"
	"io"
	"strings"
	"time"

	logpkg "github.com/lucaspiller/dnsd/internal/dns/common/log"
	"github.com/lucaspiller/dnsd/internal/dns/common/names"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

// ParseHostsFile parses /etc/hosts-style content and returns exact
// BlockRules for the hostnames it lists. The IP field is ignored; wildcard
// tokens and names starting with "." are skipped, since hosts-file syntax
// has no suffix-rule concept.
func ParseHostsFile(r io.Reader, source string, logger logpkg.Logger, now time.Time) ([]domain.BlockRule, error) {
	scanner := bufio.NewScanner(r)
	seen := make(map[string]struct{})
	out := make([]domain.BlockRule, 0, 256)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimPrefix(scanner.Text(), "\uFEFF")

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		for _, raw := range fields[1:] {
			if raw == "" || strings.HasPrefix(raw, ".") || strings.Contains(raw, "*") {
				continue
			}

			name := names.Canonical(raw)
			if !isValidFQDN(name) {
				logger.Debug(map[string]any{"line": lineNum, "name": name}, "hosts_skip_invalid_fqdn")
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}

			rule, err := domain.NewBlockRule(name, domain.BlockRuleExact, source, now)
			if err != nil {
				logger.Debug(map[string]any{"line": lineNum, "name": name, "error": err.Error()}, "hosts_skip_constructor_error")
				continue
			}
			out = append(out, rule)
			seen[name] = struct{}{}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(out)}, "parse_hosts_done")
	return out, nil
}
