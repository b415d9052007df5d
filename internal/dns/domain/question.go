package domain

import (
	"fmt"
	"strings"

	"github.com/lucaspiller/dnsd/internal/dns/common/names"
)

// Question represents a single entry of a message's question section:
// the name being asked about, its record type, and its class.
type Question struct {
	Name  string
	Type  RRType
	Class RRClass
}

// NewQuestion constructs a Question, canonicalizing the name.
func NewQuestion(name string, rrtype RRType, class RRClass) (Question, error) {
	if strings.TrimSpace(name) == "" {
		return Question{}, fmt.Errorf("question name must not be empty")
	}
	q := Question{
		Name:  names.Canonical(name),
		Type:  rrtype,
		Class: class,
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Validate checks structural validity. Unknown type/class codes are permitted
// on the wire; only emptiness is rejected here.
func (q Question) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("question name must not be empty")
	}
	return nil
}

// CacheKey returns a cache key string derived from the question's name, type, and class.
func (q Question) CacheKey() string {
	return cacheKey(q.Name, q.Type, q.Class)
}

func cacheKey(name string, t RRType, c RRClass) string {
	return fmt.Sprintf("%s|%d|%d", names.Canonical(name), uint16(t), uint16(c))
}
