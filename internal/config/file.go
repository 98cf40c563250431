package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FilePath returns the config file location under a repository root.
func FilePath(root string) string {
	return filepath.Join(root, ".culprit", "config.yaml")
}

// WriteFileKey sets a key in root/.culprit/config.yaml, creating the file
// when missing. Existing entries for the key are updated in place,
// commented-out entries are uncommented, everything else is preserved.
func WriteFileKey(root, key, value string) error {
	path := FilePath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	content, err := os.ReadFile(path) // #nosec G304 -- path is derived from the repository root
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	updated := updateYamlKey(string(content), key, value)

	if err := os.WriteFile(path, []byte(updated), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	// Reload so the change takes effect in this process too. Not fatal on
	// error; the value is on disk for the next command.
	if v != nil {
		_ = v.ReadInConfig()
	}

	return nil
}

// updateYamlKey updates a key in yaml content, handling commented-out keys.
// The first line carrying the key (commented or not) is replaced in place
// and later duplicates are dropped, so a stale entry cannot shadow the new
// value; if the key is absent the entry is appended at the end.
func updateYamlKey(content, key, value string) string {
	newLine := fmt.Sprintf("%s: %s", key, formatYamlValue(value))

	// Matches "key: value" or "# key: value" with optional leading whitespace.
	keyPattern := regexp.MustCompile(`^(\s*)(#\s*)?` + regexp.QuoteMeta(key) + `\s*:`)

	found := false
	var result []string

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if keyPattern.MatchString(line) {
			if found {
				continue
			}
			indent := keyPattern.FindStringSubmatch(line)[1]
			result = append(result, indent+newLine)
			found = true
		} else {
			result = append(result, line)
		}
	}

	if !found {
		if len(result) > 0 && result[len(result)-1] != "" {
			result = append(result, "")
		}
		result = append(result, newLine)
	}

	return strings.Join(result, "\n") + "\n"
}

// formatYamlValue quotes values that YAML would otherwise mangle.
func formatYamlValue(value string) string {
	lower := strings.ToLower(value)
	if lower == "true" || lower == "false" {
		return lower
	}
	if isNumeric(value) || isDuration(value) {
		return value
	}
	if needsQuoting(value) {
		return fmt.Sprintf("%q", value)
	}
	return value
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if c == '-' && i == 0 {
			continue
		}
		if c == '.' {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isDuration(s string) bool {
	if len(s) < 2 {
		return false
	}
	suffix := s[len(s)-1]
	if suffix != 's' && suffix != 'm' && suffix != 'h' {
		return false
	}
	return isNumeric(s[:len(s)-1])
}

func needsQuoting(s string) bool {
	if strings.ContainsAny(s, ":#[]{},&*!|>'\"%@`") {
		return true
	}
	return strings.TrimSpace(s) != s
}
