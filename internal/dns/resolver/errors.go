package resolver

import "errors"

// Sentinel errors for the resolver's failure modes, checkable with
// errors.Is at call sites.
var (
	// ErrCnameLoop indicates a CNAME chain revisited an owner name already
	// seen during this query.
	ErrCnameLoop = errors.New("resolver: cname loop detected")
	// ErrIterationLimit indicates the 32-iteration or 16-hop CNAME safety
	// cap was reached without resolving.
	ErrIterationLimit = errors.New("resolver: iteration limit exceeded")
	// ErrNoReachableNameserver indicates every candidate nameserver in the
	// current referral set failed transport or decode.
	ErrNoReachableNameserver = errors.New("resolver: no reachable nameserver")
)

const (
	maxIterations = 32
	maxCnameDepth = 16
)
