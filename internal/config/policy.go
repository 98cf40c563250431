package config

import (
	"fmt"
	"strings"
)

// DefaultRefBase is the ref namespace used when ref-base is unset or invalid.
const DefaultRefBase = "refs/culprit"

// CachedFailurePolicy tells an oracle what to do when the builder reports a
// failure from its cache instead of building fresh. A cached failure is
// strong evidence, not proof: the success artifact may be missing for
// reasons unrelated to the commit under test.
type CachedFailurePolicy string

const (
	// CachedFailureBad trusts the cache and reports the commit bad.
	CachedFailureBad CachedFailurePolicy = "bad"
	// CachedFailureSkip distrusts the cache and skips the commit.
	CachedFailureSkip CachedFailurePolicy = "skip"
	// CachedFailureRebuild ignores the cache and builds from scratch.
	CachedFailureRebuild CachedFailurePolicy = "rebuild"
)

// validCachedFailurePolicies is the set of allowed policy values.
var validCachedFailurePolicies = map[CachedFailurePolicy]bool{
	CachedFailureBad:     true,
	CachedFailureSkip:    true,
	CachedFailureRebuild: true,
}

// GetCachedFailurePolicy retrieves the cached-failure policy. The engine
// never interprets it; it is exported into the oracle environment as
// CULPRIT_CACHED_FAILURE for build scripts to honor.
// Returns CachedFailureBad (default) if not set or invalid.
// Logs a warning if an invalid value is configured.
//
// Config key: oracle.cached-failure
// Valid values: bad, skip, rebuild
func GetCachedFailurePolicy() CachedFailurePolicy {
	value := GetString("oracle.cached-failure")
	if value == "" {
		return CachedFailureBad
	}

	policy := CachedFailurePolicy(strings.ToLower(strings.TrimSpace(value)))
	if !validCachedFailurePolicies[policy] {
		fmt.Fprintf(ConfigWarningWriter, "Warning: invalid oracle.cached-failure %q in config (valid: bad, skip, rebuild), using default 'bad'\n", value)
		return CachedFailureBad
	}

	return policy
}

// GetRefBase retrieves the ref namespace base for session state.
// Returns DefaultRefBase if not set or outside refs/.
// Logs a warning if an invalid value is configured.
//
// Config key: ref-base
func GetRefBase() string {
	value := strings.TrimSpace(GetString("ref-base"))
	if value == "" {
		return DefaultRefBase
	}

	if err := validateRefBase(value); err != nil {
		fmt.Fprintf(ConfigWarningWriter, "Warning: invalid ref-base in config (%v), using default %q\n", err, DefaultRefBase)
		return DefaultRefBase
	}

	return value
}
