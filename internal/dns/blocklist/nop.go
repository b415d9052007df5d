package blocklist

import "github.com/lucaspiller/dnsd/internal/dns/domain"

// Noop is a Repository that never blocks anything. It is the default when
// no blocklist source is configured.
type Noop struct{}

func (Noop) Decide(string) domain.BlockDecision { return domain.AllowDecision() }

func (Noop) Update([]domain.BlockRule, uint64, int64) error { return nil }

func (Noop) RepoStats() RepoStats { return RepoStats{} }

var _ Repository = Noop{}
