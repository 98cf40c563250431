package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Key describes one configuration key.
type Key struct {
	Name        string // Full key name (e.g., "oracle.cached-failure")
	Description string // Human-readable description
	EnvVar      string // Overriding environment variable (empty = dotted mapping only)
	Default     string // Default value (empty = zero value)
	Validate    func(string) error
}

// Keys defines every configuration key culprit reads. Values live in
// .culprit/config.yaml and are overridden by the listed environment
// variables. Defaults here drive Initialize.
var Keys = []Key{
	{
		Name:        "ref-base",
		Description: "Ref namespace holding session state",
		EnvVar:      "CULPRIT_REF_BASE",
		Default:     DefaultRefBase,
		Validate:    validateRefBase,
	},
	{
		Name:        "log-path",
		Description: "Audit log location (default: <gitdir>/culprit-log)",
		EnvVar:      "CULPRIT_LOG_PATH",
	},
	{
		Name:        "no-color",
		Description: "Disable styled terminal output",
		EnvVar:      "CULPRIT_NO_COLOR",
		Default:     "false",
		Validate:    validateBool,
	},
	{
		Name:        "run.retries",
		Description: "Extra oracle attempts before accepting a skip verdict",
		EnvVar:      "CULPRIT_RUN_RETRIES",
		Default:     "0",
		Validate:    validateCount,
	},
	{
		Name:        "watch.debounce",
		Description: "Event coalescing window for status --watch",
		EnvVar:      "CULPRIT_WATCH_DEBOUNCE",
		Default:     "200ms",
		Validate:    validateDuration,
	},
	{
		Name:        "telemetry.enabled",
		Description: "Emit OpenTelemetry traces and metrics",
		EnvVar:      "CULPRIT_TELEMETRY",
		Default:     "false",
		Validate:    validateBool,
	},
	{
		Name:        "oracle.env",
		Description: "Extra KEY=VALUE entries for the oracle environment",
	},
	{
		Name:        "oracle.cached-failure",
		Description: "How oracles should treat failures reported from a cache",
		EnvVar:      "CULPRIT_CACHED_FAILURE",
		Default:     "bad",
		Validate:    validateCachedFailure,
	},
}

// keyMap is a lookup table built from Keys.
var keyMap map[string]*Key

func init() {
	keyMap = make(map[string]*Key, len(Keys))
	for i := range Keys {
		keyMap[Keys[i].Name] = &Keys[i]
	}
}

// Lookup returns the definition for a known key, or nil.
func Lookup(name string) *Key {
	return keyMap[name]
}

// ValidateKey checks whether a key is known and the value is acceptable.
// Returns nil if valid, or an error describing the problem.
func ValidateKey(name, value string) error {
	k := keyMap[name]
	if k == nil {
		known := make([]string, 0, len(Keys))
		for _, kk := range Keys {
			known = append(known, kk.Name)
		}
		return fmt.Errorf("unknown config key %q; valid keys: %s", name, strings.Join(known, ", "))
	}

	if k.Validate != nil {
		if err := k.Validate(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", name, err)
		}
	}

	return nil
}

// Validation helpers

func validateBool(value string) error {
	switch strings.ToLower(value) {
	case "true", "false", "1", "0", "yes", "no":
		return nil
	default:
		return fmt.Errorf("must be true or false, got %q", value)
	}
}

func validateCount(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("must be a number, got %q", value)
	}
	if n < 0 {
		return fmt.Errorf("must not be negative, got %d", n)
	}
	return nil
}

func validateDuration(value string) error {
	if _, err := time.ParseDuration(value); err != nil {
		return fmt.Errorf("must be a duration like 200ms or 5s, got %q", value)
	}
	return nil
}

func validateRefBase(value string) error {
	if !strings.HasPrefix(value, "refs/") {
		return fmt.Errorf("must start with refs/, got %q", value)
	}
	if strings.HasSuffix(value, "/") {
		return fmt.Errorf("must not end with /, got %q", value)
	}
	return nil
}

func validateCachedFailure(value string) error {
	switch strings.ToLower(value) {
	case "bad", "skip", "rebuild":
		return nil
	default:
		return fmt.Errorf("must be one of: bad, skip, rebuild; got %q", value)
	}
}
