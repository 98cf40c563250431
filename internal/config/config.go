// Package config holds the process-wide configuration singleton.
//
// Precedence, lowest to highest: built-in defaults, the repository's
// .culprit/config.yaml (discovered by walking up from the working
// directory), then CULPRIT_* environment variables.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// v is the package-level viper instance. Every getter is nil-safe so code
// that runs before Initialize (or after a test reset) degrades to zero
// values instead of panicking.
var v *viper.Viper

// ConfigWarningWriter receives warnings about invalid configuration values.
// Tests swap it to capture output.
var ConfigWarningWriter io.Writer = os.Stderr

// Initialize builds the singleton: defaults from the key registry, then
// .culprit/config.yaml if one exists between the working directory and the
// filesystem root, then CULPRIT_* environment overrides. Safe to call more
// than once; each call rebuilds the instance.
func Initialize() error {
	vv := viper.New()
	vv.SetConfigName("config")
	vv.SetConfigType("yaml")

	vv.SetEnvPrefix("CULPRIT")
	vv.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	vv.AutomaticEnv()

	for _, k := range Keys {
		if k.Default != "" {
			vv.SetDefault(k.Name, k.Default)
		}
		// Explicit bindings carry the short spellings (CULPRIT_TELEMETRY,
		// CULPRIT_CACHED_FAILURE) that the dotted keys would not map to.
		if k.EnvVar != "" {
			_ = vv.BindEnv(k.Name, k.EnvVar)
		}
	}

	if dir := findConfigDir(); dir != "" {
		vv.AddConfigPath(dir)
		if err := vv.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("read config: %w", err)
			}
		}
	}

	v = vv
	return nil
}

// findConfigDir walks up from the working directory looking for a
// .culprit/config.yaml and returns the .culprit directory that holds it.
// Returns "" when there is none; running without a config file is normal.
func findConfigDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, ".culprit")
		if _, err := os.Stat(filepath.Join(candidate, "config.yaml")); err == nil {
			return candidate
		}
	}
	return ""
}

// GetString returns the string value for key, or "" before initialization.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool returns the boolean value for key, or false before initialization.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt returns the integer value for key, or 0 before initialization.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration returns the duration value for key, or 0 before initialization.
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// GetStringSlice returns the string-slice value for key, or an empty slice
// before initialization.
func GetStringSlice(key string) []string {
	if v == nil {
		return []string{}
	}
	return v.GetStringSlice(key)
}

// Set overrides a value in the running process. No-op before initialization.
func Set(key string, value interface{}) {
	if v == nil {
		return
	}
	v.Set(key, value)
}

// AllSettings returns every effective setting as a nested map.
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}

// ResetForTesting drops the singleton so the next Initialize starts clean.
func ResetForTesting() {
	v = nil
}
