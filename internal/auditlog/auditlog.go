// Package auditlog records bisection decisions in an append-only text file.
// The file lives next to the ref store and holds two kinds of lines: comment
// lines of the form `# <RFC3339> <annotation>` and literal culprit commands
// that replay the decision. The refs stay authoritative; the log exists for
// humans and for audit, and is never used to reconstruct state.
package auditlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileName is the log file name inside the git directory.
const FileName = "culprit-log"

// DefaultPath returns the log path for a repository's git directory.
func DefaultPath(gitDir string) string {
	return filepath.Join(gitDir, FileName)
}

// Log appends to and reads one audit file.
type Log struct {
	path string
}

// New returns a Log at the given path. The file is created on first append.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file path.
func (l *Log) Path() string { return l.path }

// Entry is one parsed decision: the timestamped annotation and, when the
// decision is replayable, the culprit command that reproduces it.
type Entry struct {
	Time       time.Time `yaml:"time,omitempty"`
	Annotation string    `yaml:"note,omitempty"`
	Command    string    `yaml:"cmd,omitempty"`
}

// Annotate appends a comment-only line.
func (l *Log) Annotate(text string) error {
	return l.append(fmt.Sprintf("# %s %s\n", time.Now().UTC().Format(time.RFC3339), text))
}

// Record appends one decision: the annotation line followed by the
// replayable command line.
func (l *Log) Record(annotation, command string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n", time.Now().UTC().Format(time.RFC3339), annotation)
	fmt.Fprintf(&b, "%s\n", command)
	return l.append(b.String())
}

func (l *Log) append(text string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) // #nosec G304 - controlled path
	if err != nil {
		return fmt.Errorf("failed to open audit log for append: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync audit log: %w", err)
	}
	return nil
}

// Entries parses the whole log in file order. A missing file is an empty
// log. Hand-edited lines are tolerated: a comment with no parseable
// timestamp keeps its text as the annotation, and a bare command line with
// no preceding comment becomes a command-only entry.
func (l *Log) Entries() ([]Entry, error) {
	f, err := os.Open(l.path) // #nosec G304 - controlled path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	open := -1 // index of the entry still waiting for its command line
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if after, ok := strings.CutPrefix(line, "# "); ok {
			var e Entry
			stamp, rest, _ := strings.Cut(after, " ")
			if t, err := time.Parse(time.RFC3339, stamp); err == nil {
				e.Time = t
				e.Annotation = rest
			} else {
				e.Annotation = after
			}
			entries = append(entries, e)
			open = len(entries) - 1
			continue
		}
		if open >= 0 && entries[open].Command == "" {
			entries[open].Command = line
		} else {
			entries = append(entries, Entry{Command: line})
		}
		open = -1
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return entries, nil
}

// Since filters entries to those at or after the cutoff. Entries without a
// timestamp are kept only when no cutoff is given.
func Since(entries []Entry, cutoff time.Time) []Entry {
	if cutoff.IsZero() {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if !e.Time.IsZero() && !e.Time.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}
