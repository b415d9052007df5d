package zone

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	"github.com/lucaspiller/dnsd/internal/dns/common/names"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

// LoadDirectory walks dir and parses every YAML, JSON, or TOML zone file
// found, returning one *Zone per distinct "zone_root" declared. Files with
// unrecognized extensions are skipped.
func LoadDirectory(dir string, defaultTTL time.Duration) ([]*Zone, error) {
	byOrigin := make(map[string]*Zone)

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		z, err := loadFile(path, defaultTTL)
		if err != nil {
			return fmt.Errorf("zone file %s: %w", path, err)
		}
		if z == nil {
			return nil
		}
		if existing, ok := byOrigin[z.Origin]; ok {
			mergeInto(existing, z)
			return nil
		}
		byOrigin[z.Origin] = z
		return nil
	})
	if err != nil {
		return nil, err
	}

	zones := make([]*Zone, 0, len(byOrigin))
	for _, z := range byOrigin {
		zones = append(zones, z)
	}
	return zones, nil
}

func mergeInto(dst, src *Zone) {
	for _, recs := range src.records {
		for _, rr := range recs {
			dst.Add(rr)
		}
	}
}

// loadFile parses a single zone file. It returns (nil, nil) for file
// extensions it does not recognize as zone data.
func loadFile(path string, defaultTTL time.Duration) (*Zone, error) {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	case ".toml":
		parser = toml.Parser()
	default:
		return nil, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("loading: %w", err)
	}

	root := k.String("zone_root")
	if root == "" {
		return nil, fmt.Errorf("missing required key \"zone_root\"")
	}
	z := NewZone(root)

	for owner, raw := range k.Raw() {
		if owner == "zone_root" {
			continue
		}
		ownerRecords, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		fqdn := expandOwner(owner, z.Origin)
		for rrtypeName, val := range ownerRecords {
			rrtype := domain.RRTypeFromString(strings.ToUpper(rrtypeName))
			if rrtype == 0 {
				return nil, fmt.Errorf("unrecognized record type %q for owner %q", rrtypeName, owner)
			}
			for _, text := range textValues(val) {
				ttl := defaultTTL
				rdata, err := encodeValue(rrtype, text)
				if err != nil {
					return nil, fmt.Errorf("owner %q type %s: %w", owner, rrtype, err)
				}
				rr, err := domain.NewAuthoritativeRecord(fqdn, rrtype, domain.RRClassIN, uint32(ttl.Seconds()), rdata)
				if err != nil {
					return nil, fmt.Errorf("owner %q type %s: %w", owner, rrtype, err)
				}
				z.Add(rr)
			}
		}
	}
	return z, nil
}

// expandOwner turns a zone-file-relative label into a fully qualified,
// canonical owner name: "@" refers to the zone origin itself, a name
// already ending in "." is taken as absolute, and anything else is treated
// as relative to origin.
func expandOwner(label, origin string) string {
	if label == "@" {
		return origin
	}
	if strings.HasSuffix(label, ".") {
		return names.Canonical(label)
	}
	return names.Canonical(label + "." + origin)
}

// textValues normalizes a koanf-parsed record value, which may be a single
// string or a list of strings (for multiple records of the same type under
// one owner), into a slice of trimmed, non-empty strings.
func textValues(val any) []string {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		return []string{s}
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			out = append(out, s)
		}
		return out
	default:
		return nil
	}
}
