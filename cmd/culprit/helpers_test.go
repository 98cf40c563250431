package main

import (
	"testing"
	"time"

	"github.com/culpritdev/culprit/internal/auditlog"
)

func TestShortCommit(t *testing.T) {
	tests := []struct {
		name   string
		commit string
		want   string
	}{
		{"full hash", "0123456789abcdef0123456789abcdef01234567", "0123456789ab"},
		{"already short", "0123456", "0123456"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shortCommit(tt.commit); got != tt.want {
				t.Errorf("shortCommit(%q) = %q, want %q", tt.commit, got, tt.want)
			}
		})
	}
}

func TestCountTrials(t *testing.T) {
	entries := []auditlog.Entry{
		{Annotation: "start: bad 4f1c9aa good 3bb12cc", Command: "culprit start 4f1c9aa 3bb12cc"},
		{Annotation: "good: 3bb12cc fix typo", Command: "culprit good 3bb12cc0000000000000000000000000000000000"},
		{Annotation: "bad: 4f1c9aa break build", Command: "culprit bad 4f1c9aa0000000000000000000000000000000000"},
		{Annotation: "skip openssl-bump: 1c3f2aa", Command: "culprit skip 1c3f2aa0000000000000000000000000000000000 --name openssl-bump"},
		{Annotation: "reset"},
	}
	if got := countTrials(entries); got != 3 {
		t.Errorf("countTrials() = %d, want 3", got)
	}
}

func TestCountTrialsEmpty(t *testing.T) {
	if got := countTrials(nil); got != 0 {
		t.Errorf("countTrials(nil) = %d, want 0", got)
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("bare duration means ago", func(t *testing.T) {
		got, err := parseSince("2d", now)
		if err != nil {
			t.Fatalf("parseSince: %v", err)
		}
		want := now.AddDate(0, 0, -2)
		if !got.Equal(want) {
			t.Errorf("parseSince(2d) = %v, want %v", got, want)
		}
	})

	t.Run("signed duration passes through", func(t *testing.T) {
		got, err := parseSince("-6h", now)
		if err != nil {
			t.Fatalf("parseSince: %v", err)
		}
		want := now.Add(-6 * time.Hour)
		if !got.Equal(want) {
			t.Errorf("parseSince(-6h) = %v, want %v", got, want)
		}
	})

	t.Run("date", func(t *testing.T) {
		got, err := parseSince("2025-03-01", now)
		if err != nil {
			t.Fatalf("parseSince: %v", err)
		}
		if got.Year() != 2025 || got.Month() != time.March || got.Day() != 1 {
			t.Errorf("parseSince(2025-03-01) = %v", got)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := parseSince("zzzz", now); err == nil {
			t.Error("expected error for unparseable input")
		}
	})
}
