package debug

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything it printed.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	defer func() { os.Stdout = oldStdout }()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestEnabled(t *testing.T) {
	oldEnabled := enabled
	oldVerbose := verboseMode
	defer func() {
		enabled = oldEnabled
		verboseMode = oldVerbose
	}()

	enabled = false
	verboseMode = false
	if Enabled() {
		t.Error("Enabled() = true with nothing set, want false")
	}

	enabled = true
	if !Enabled() {
		t.Error("Enabled() = false with env flag set, want true")
	}

	enabled = false
	SetVerbose(true)
	if !Enabled() {
		t.Error("Enabled() = false after SetVerbose(true), want true")
	}

	SetVerbose(false)
	if Enabled() {
		t.Error("Enabled() = true after SetVerbose(false), want false")
	}
}

func TestLogf(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		wantOutput string
	}{
		{"outputs when enabled", true, "checking out abc1234\n"},
		{"no output when disabled", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldEnabled := enabled
			oldStderr := os.Stderr
			defer func() {
				enabled = oldEnabled
				os.Stderr = oldStderr
			}()

			enabled = tt.enabled

			r, w, _ := os.Pipe()
			os.Stderr = w

			Logf("checking out %s\n", "abc1234")

			w.Close()
			var buf bytes.Buffer
			io.Copy(&buf, r)

			if got := buf.String(); got != tt.wantOutput {
				t.Errorf("Logf() output = %q, want %q", got, tt.wantOutput)
			}
		})
	}
}

func TestSetQuietAndIsQuiet(t *testing.T) {
	oldQuiet := quietMode
	defer func() { quietMode = oldQuiet }()

	quietMode = false
	if IsQuiet() {
		t.Error("IsQuiet() should be false initially")
	}

	SetQuiet(true)
	if !IsQuiet() {
		t.Error("IsQuiet() should be true after SetQuiet(true)")
	}

	SetQuiet(false)
	if IsQuiet() {
		t.Error("IsQuiet() should be false after SetQuiet(false)")
	}
}

func TestPrintNormal(t *testing.T) {
	tests := []struct {
		name       string
		quiet      bool
		wantOutput string
	}{
		{"outputs when not quiet", false, "narrowed to 12 commits\n"},
		{"no output when quiet", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldQuiet := quietMode
			defer func() { quietMode = oldQuiet }()
			quietMode = tt.quiet

			got := captureStdout(t, func() {
				PrintNormal("narrowed to %d commits\n", 12)
			})
			if got != tt.wantOutput {
				t.Errorf("PrintNormal() output = %q, want %q", got, tt.wantOutput)
			}
		})
	}
}
