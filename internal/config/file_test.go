package config

import (
	"os"
	"path/filepath"
	"testing"
)

func seedConfigFile(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, ".culprit")
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatalf("failed to create .culprit directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("failed to seed config file: %v", err)
	}
}

func readConfigFile(t *testing.T, root string) string {
	t.Helper()
	data, err := os.ReadFile(FilePath(root))
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	return string(data)
}

func TestWriteFileKeyCreatesFile(t *testing.T) {
	root := t.TempDir()

	if err := WriteFileKey(root, "ref-base", "refs/hunt"); err != nil {
		t.Fatalf("WriteFileKey failed: %v", err)
	}

	if got := readConfigFile(t, root); got != "ref-base: refs/hunt\n" {
		t.Errorf("config file = %q, want %q", got, "ref-base: refs/hunt\n")
	}
}

func TestWriteFileKeyUpdatesInPlace(t *testing.T) {
	root := t.TempDir()
	seedConfigFile(t, root, "# culprit configuration\nref-base: refs/old\nno-color: true\n")

	if err := WriteFileKey(root, "ref-base", "refs/new"); err != nil {
		t.Fatalf("WriteFileKey failed: %v", err)
	}

	want := "# culprit configuration\nref-base: refs/new\nno-color: true\n"
	if got := readConfigFile(t, root); got != want {
		t.Errorf("config file = %q, want %q", got, want)
	}
}

func TestWriteFileKeyUncommentsTemplate(t *testing.T) {
	root := t.TempDir()
	seedConfigFile(t, root, "# ref-base: refs/culprit\n")

	if err := WriteFileKey(root, "ref-base", "refs/hunt"); err != nil {
		t.Fatalf("WriteFileKey failed: %v", err)
	}

	if got := readConfigFile(t, root); got != "ref-base: refs/hunt\n" {
		t.Errorf("config file = %q, want %q", got, "ref-base: refs/hunt\n")
	}
}

func TestWriteFileKeyDropsStaleDuplicates(t *testing.T) {
	root := t.TempDir()
	seedConfigFile(t, root, "# ref-base: refs/culprit\nref-base: refs/old\n")

	if err := WriteFileKey(root, "ref-base", "refs/new"); err != nil {
		t.Fatalf("WriteFileKey failed: %v", err)
	}

	if got := readConfigFile(t, root); got != "ref-base: refs/new\n" {
		t.Errorf("config file = %q, want %q", got, "ref-base: refs/new\n")
	}
}

func TestWriteFileKeyAppendsNewKey(t *testing.T) {
	root := t.TempDir()
	seedConfigFile(t, root, "no-color: true\n")

	if err := WriteFileKey(root, "log-path", "/tmp/culprit.log"); err != nil {
		t.Fatalf("WriteFileKey failed: %v", err)
	}

	want := "no-color: true\n\nlog-path: /tmp/culprit.log\n"
	if got := readConfigFile(t, root); got != want {
		t.Errorf("config file = %q, want %q", got, want)
	}
}

func TestFormatYamlValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"true", "true"},
		{"False", "false"},
		{"42", "42"},
		{"-1", "-1"},
		{"30s", "30s"},
		{"200ms", "200ms"},
		{"refs/culprit", "refs/culprit"},
		{"plain", "plain"},
		{"with: colon", `"with: colon"`},
		{"tag #1", `"tag #1"`},
		{" padded ", `" padded "`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := formatYamlValue(tt.in); got != tt.want {
				t.Errorf("formatYamlValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
