package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitialize(t *testing.T) {
	err := Initialize()
	if err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	if v == nil {
		t.Fatal("viper instance is nil after Initialize()")
	}
}

func TestDefaults(t *testing.T) {
	ResetForTesting()
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	tests := []struct {
		key      string
		expected interface{}
		getter   func(string) interface{}
	}{
		{"ref-base", "refs/culprit", func(k string) interface{} { return GetString(k) }},
		{"log-path", "", func(k string) interface{} { return GetString(k) }},
		{"no-color", false, func(k string) interface{} { return GetBool(k) }},
		{"run.retries", 0, func(k string) interface{} { return GetInt(k) }},
		{"watch.debounce", 200 * time.Millisecond, func(k string) interface{} { return GetDuration(k) }},
		{"telemetry.enabled", false, func(k string) interface{} { return GetBool(k) }},
		{"oracle.cached-failure", "bad", func(k string) interface{} { return GetString(k) }},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := tt.getter(tt.key)
			if got != tt.expected {
				t.Errorf("GetXXX(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestEnvironmentBinding(t *testing.T) {
	tests := []struct {
		envVar   string
		key      string
		value    string
		expected interface{}
		getter   func(string) interface{}
	}{
		{"CULPRIT_REF_BASE", "ref-base", "refs/bughunt", "refs/bughunt", func(k string) interface{} { return GetString(k) }},
		{"CULPRIT_LOG_PATH", "log-path", "/tmp/culprit.log", "/tmp/culprit.log", func(k string) interface{} { return GetString(k) }},
		{"CULPRIT_NO_COLOR", "no-color", "true", true, func(k string) interface{} { return GetBool(k) }},
		{"CULPRIT_RUN_RETRIES", "run.retries", "3", 3, func(k string) interface{} { return GetInt(k) }},
		{"CULPRIT_WATCH_DEBOUNCE", "watch.debounce", "1s", time.Second, func(k string) interface{} { return GetDuration(k) }},
		{"CULPRIT_TELEMETRY", "telemetry.enabled", "1", true, func(k string) interface{} { return GetBool(k) }},
		{"CULPRIT_CACHED_FAILURE", "oracle.cached-failure", "rebuild", "rebuild", func(k string) interface{} { return GetString(k) }},
	}

	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			if err := Initialize(); err != nil {
				t.Fatalf("Initialize() returned error: %v", err)
			}

			got := tt.getter(tt.key)
			if got != tt.expected {
				t.Errorf("GetXXX(%q) with %s=%s = %v, want %v", tt.key, tt.envVar, tt.value, got, tt.expected)
			}
		})
	}
}

func TestConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `
ref-base: refs/hunt
no-color: true

run:
  retries: 2

oracle:
  env:
    - NIXPKGS_ALLOW_UNFREE=1
    - CACHIX_CACHE=team
`
	culpritDir := filepath.Join(tmpDir, ".culprit")
	if err := os.MkdirAll(culpritDir, 0750); err != nil {
		t.Fatalf("failed to create .culprit directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(culpritDir, "config.yaml"), []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Chdir(tmpDir)

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	if got := GetString("ref-base"); got != "refs/hunt" {
		t.Errorf("GetString(ref-base) = %q, want \"refs/hunt\"", got)
	}

	if got := GetBool("no-color"); got != true {
		t.Errorf("GetBool(no-color) = %v, want true", got)
	}

	if got := GetInt("run.retries"); got != 2 {
		t.Errorf("GetInt(run.retries) = %d, want 2", got)
	}

	got := GetStringSlice("oracle.env")
	if len(got) != 2 || got[0] != "NIXPKGS_ALLOW_UNFREE=1" || got[1] != "CACHIX_CACHE=team" {
		t.Errorf("GetStringSlice(oracle.env) = %v, want the two entries from the file", got)
	}
}

func TestConfigFileDiscoveredFromSubdir(t *testing.T) {
	tmpDir := t.TempDir()

	culpritDir := filepath.Join(tmpDir, ".culprit")
	if err := os.MkdirAll(culpritDir, 0750); err != nil {
		t.Fatalf("failed to create .culprit directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(culpritDir, "config.yaml"), []byte("ref-base: refs/found\n"), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	deep := filepath.Join(tmpDir, "src", "pkg")
	if err := os.MkdirAll(deep, 0750); err != nil {
		t.Fatalf("failed to create nested directory: %v", err)
	}

	t.Chdir(deep)

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	if got := GetString("ref-base"); got != "refs/found" {
		t.Errorf("GetString(ref-base) from subdir = %q, want \"refs/found\"", got)
	}
}

func TestConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()

	culpritDir := filepath.Join(tmpDir, ".culprit")
	if err := os.MkdirAll(culpritDir, 0750); err != nil {
		t.Fatalf("failed to create .culprit directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(culpritDir, "config.yaml"), []byte("ref-base: refs/fromfile\n"), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Chdir(tmpDir)

	// Config file value first.
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	if got := GetString("ref-base"); got != "refs/fromfile" {
		t.Errorf("GetString(ref-base) from config file = %q, want \"refs/fromfile\"", got)
	}

	// Environment variable overrides the config file.
	t.Setenv("CULPRIT_REF_BASE", "refs/fromenv")

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	if got := GetString("ref-base"); got != "refs/fromenv" {
		t.Errorf("GetString(ref-base) with env var = %q, want \"refs/fromenv\" (env should override config)", got)
	}
}

func TestSetAndGet(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	Set("test-key", "test-value")
	if got := GetString("test-key"); got != "test-value" {
		t.Errorf("GetString(test-key) = %q, want \"test-value\"", got)
	}

	Set("test-bool", true)
	if got := GetBool("test-bool"); got != true {
		t.Errorf("GetBool(test-bool) = %v, want true", got)
	}

	Set("test-int", 42)
	if got := GetInt("test-int"); got != 42 {
		t.Errorf("GetInt(test-int) = %d, want 42", got)
	}
}

func TestAllSettings(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	Set("custom-key", "custom-value")

	settings := AllSettings()
	if settings == nil {
		t.Fatal("AllSettings() returned nil")
	}

	if val, ok := settings["custom-key"]; !ok || val != "custom-value" {
		t.Errorf("AllSettings() missing or incorrect custom-key: got %v", val)
	}
}

func TestNilViperBehavior(t *testing.T) {
	savedV := v

	// Set viper to nil to test nil-safety
	v = nil
	defer func() { v = savedV }()

	if got := GetString("any-key"); got != "" {
		t.Errorf("GetString with nil viper = %q, want \"\"", got)
	}

	if got := GetBool("any-key"); got != false {
		t.Errorf("GetBool with nil viper = %v, want false", got)
	}

	if got := GetInt("any-key"); got != 0 {
		t.Errorf("GetInt with nil viper = %d, want 0", got)
	}

	if got := GetDuration("any-key"); got != 0 {
		t.Errorf("GetDuration with nil viper = %v, want 0", got)
	}

	if got := GetStringSlice("any-key"); got == nil || len(got) != 0 {
		t.Errorf("GetStringSlice with nil viper = %v, want empty slice", got)
	}

	if got := AllSettings(); got == nil || len(got) != 0 {
		t.Errorf("AllSettings with nil viper = %v, want empty map", got)
	}

	// Set should not panic
	Set("any-key", "any-value")
}
