package timeparsing

import (
	"testing"
	"time"
)

func TestParseCompactDuration(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"+6h adds hours", "+6h", time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC), false},
		{"+2w adds weeks", "+2w", time.Date(2025, 6, 29, 12, 0, 0, 0, time.UTC), false},
		{"-1d subtracts a day", "-1d", time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC), false},
		{"-6h subtracts hours", "-6h", time.Date(2025, 6, 15, 6, 0, 0, 0, time.UTC), false},
		{"no sign means positive", "3m", time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC), false},
		{"multi-digit amount", "+365d", time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC), false},
		{"sign at end", "6h+", time.Time{}, true},
		{"double sign", "++1d", time.Time{}, true},
		{"unknown unit", "1x", time.Time{}, true},
		{"bare number", "6", time.Time{}, true},
		{"spaces", "+ 6h", time.Time{}, true},
		{"ISO date is not a duration", "2025-01-15", time.Time{}, true},
		{"natural language is not a duration", "yesterday", time.Time{}, true},
		{"empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCompactDuration(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCompactDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseCompactDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	t.Run("leap day", func(t *testing.T) {
		got, err := ParseCompactDuration("+1d", time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("Feb 28, 2024 + 1d = %v, want %v", got, want)
		}
	})

	t.Run("preserves timezone", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skip("timezone America/New_York not available")
		}
		got, err := ParseCompactDuration("+1d", time.Date(2025, 6, 15, 12, 0, 0, 0, loc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Location() != loc {
			t.Errorf("timezone not preserved: got %v, want %v", got.Location(), loc)
		}
	})
}

func TestIsCompactDuration(t *testing.T) {
	valid := []string{"+6h", "-1d", "+2w", "3m", "1y", "+24h"}
	invalid := []string{"", "yesterday", "2025-01-15", "6h+", "++1d", "1x"}

	for _, s := range valid {
		if !IsCompactDuration(s) {
			t.Errorf("IsCompactDuration(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsCompactDuration(s) {
			t.Errorf("IsCompactDuration(%q) = true, want false", s)
		}
	}
}

func TestParseNaturalLanguage(t *testing.T) {
	// Wednesday, January 15, 2025
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name      string
		input     string
		wantYear  int
		wantMonth time.Month
		wantDay   int
		wantHour  int // -1 means don't check hour
		wantErr   bool
	}{
		{"yesterday", "yesterday", 2025, time.January, 14, -1, false},
		{"tomorrow", "tomorrow", 2025, time.January, 16, -1, false},
		{"next monday", "next monday", 2025, time.January, 20, -1, false},
		{"with time of day", "tomorrow at 9am", 2025, time.January, 16, 9, false},
		{"days ago", "3 days ago", 2025, time.January, 12, -1, false},
		{"in a week", "in 1 week", 2025, time.January, 22, -1, false},
		{"random text", "not a date at all", 0, 0, 0, 0, true},
		{"empty", "", 0, 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNaturalLanguage(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseNaturalLanguage(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if got.Year() != tt.wantYear || got.Month() != tt.wantMonth || got.Day() != tt.wantDay {
				t.Errorf("ParseNaturalLanguage(%q) = %v, want %d-%02d-%02d",
					tt.input, got, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
			if tt.wantHour >= 0 && got.Hour() != tt.wantHour {
				t.Errorf("ParseNaturalLanguage(%q) hour = %d, want %d", tt.input, got.Hour(), tt.wantHour)
			}
		})
	}
}

func TestParseRelativeTime(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.Local)

	t.Run("compact duration wins over NLP", func(t *testing.T) {
		got, err := ParseRelativeTime("-1d", now)
		if err != nil {
			t.Fatalf("ParseRelativeTime(-1d) failed: %v", err)
		}
		if want := now.AddDate(0, 0, -1); !got.Equal(want) {
			t.Errorf("ParseRelativeTime(-1d) = %v, want %v", got, want)
		}
	})

	t.Run("date-only", func(t *testing.T) {
		got, err := ParseRelativeTime("2025-01-20", now)
		if err != nil {
			t.Fatalf("ParseRelativeTime(2025-01-20) failed: %v", err)
		}
		if got.Year() != 2025 || got.Month() != time.January || got.Day() != 20 || got.Hour() != 0 {
			t.Errorf("ParseRelativeTime(2025-01-20) = %v, want midnight Jan 20, 2025", got)
		}
	})

	t.Run("RFC3339", func(t *testing.T) {
		got, err := ParseRelativeTime("2025-03-15T14:30:00Z", now)
		if err != nil {
			t.Fatalf("ParseRelativeTime(RFC3339) failed: %v", err)
		}
		if got.UTC().Hour() != 14 || got.Day() != 15 {
			t.Errorf("ParseRelativeTime(RFC3339) = %v, want Mar 15 14:30 UTC", got)
		}
	})

	t.Run("natural language fallback", func(t *testing.T) {
		got, err := ParseRelativeTime("yesterday", now)
		if err != nil {
			t.Fatalf("ParseRelativeTime(yesterday) failed: %v", err)
		}
		if got.Day() != 14 {
			t.Errorf("ParseRelativeTime(yesterday) = %v, want Jan 14", got)
		}
	})

	t.Run("unrecognized", func(t *testing.T) {
		if _, err := ParseRelativeTime("not-a-date", now); err == nil {
			t.Error("expected error for unrecognized expression")
		}
	})
}
