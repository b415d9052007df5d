package parsers

import (
	"bufio"
	"io"
	"strings"
	"time"

	logpkg "github.com/lucaspiller/dnsd/internal/dns/common/log"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

// ParsePlainList parses a newline-delimited domain list. A "*." or "."
// prefix marks a suffix (apex-inclusive) rule; anything else is exact.
// Lines and trailing fragments starting with "#" are comments.
func ParsePlainList(r io.Reader, source string, logger logpkg.Logger, now time.Time) ([]domain.BlockRule, error) {
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

		s := strings.TrimSpace(line)
		kind := ruleKindFromRaw(s)
		name := normalizeDomainName(s)

		if !isValidFQDN(name) {
			logger.Debug(map[string]any{"line": lineNum, "raw": s}, "plain_skip_invalid_fqdn")
			continue
		}

		key := name + "|" + kind.String()
		if _, dup := seen[key]; dup {
			continue
		}

		rule, err := domain.NewBlockRule(name, kind, source, now)
		if err != nil {
			logger.Debug(map[string]any{"line": lineNum, "name": name, "error": err.Error()}, "plain_skip_constructor_error")
			continue
		}
		out = append(out, rule)
		seen[key] = struct{}{}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(out)}, "parse_plain_list_done")
	return out, nil
}
