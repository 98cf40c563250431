package trial

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/culpritdev/culprit/internal/bisect"
)

// RangeMarker is the stdout prefix through which a trial command names the
// skip range it hit when it exits with ExitSkipRange.
const RangeMarker = "culprit-range:"

// Exit codes a trial command uses to report its verdict. Everything in
// 1..127 other than ExitSkip means bad; anything outside the table aborts
// the run with ErrOracleContract.
const (
	ExitGood      = 0
	ExitSkip      = 125
	ExitSkipRange = 129
)

// CommandOracle judges candidates by running an external command in the
// working tree and mapping its exit status. Output streams through to the
// configured writers while stdout is also scanned for the RangeMarker line.
type CommandOracle struct {
	Argv   []string
	Dir    string
	Env    []string // extra KEY=VALUE pairs for the trial command
	Stdout io.Writer
	Stderr io.Writer

	// GoodCodes and SkipCodes extend the default mapping for harnesses
	// with different exit conventions (a test runner that exits 137 on an
	// OOM-killed build, say). They are consulted before the standard
	// table.
	GoodCodes []int
	SkipCodes []int
}

func (o *CommandOracle) Judge(ctx context.Context, t Trial) (Outcome, error) {
	if len(o.Argv) == 0 {
		return Outcome{}, fmt.Errorf("no trial command configured")
	}

	var captured bytes.Buffer
	stdout := io.Writer(&captured)
	if o.Stdout != nil {
		stdout = io.MultiWriter(o.Stdout, &captured)
	}

	cmd := exec.CommandContext(ctx, o.Argv[0], o.Argv[1:]...)
	cmd.Dir = o.Dir
	cmd.Stdout = stdout
	cmd.Stderr = o.Stderr
	cmd.Stdin = nil
	cmd.Env = append(os.Environ(), o.Env...)
	cmd.Env = append(cmd.Env,
		"CULPRIT_COMMIT="+t.Candidate,
		"CULPRIT_PATCHSET="+strings.Join(t.Patchset, " "),
	)

	err := cmd.Run()
	if err == nil {
		return Outcome{Verdict: Good}, nil
	}
	if ctx.Err() != nil {
		return Outcome{}, ctx.Err()
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return Outcome{}, fmt.Errorf("trial command failed to run: %w", err)
	}

	switch code := exitErr.ExitCode(); {
	case slices.Contains(o.GoodCodes, code):
		return Outcome{Verdict: Good}, nil
	case slices.Contains(o.SkipCodes, code):
		return Outcome{Verdict: Skip}, nil
	case code == ExitSkip:
		return Outcome{Verdict: Skip}, nil
	case code == ExitSkipRange:
		name, ok := lastRangeName(captured.Bytes())
		if !ok {
			return Outcome{}, fmt.Errorf("%w: exit status %d without a %q line", ErrOracleContract, ExitSkipRange, RangeMarker)
		}
		if err := bisect.ValidateRangeName(name); err != nil {
			return Outcome{}, fmt.Errorf("%w: %v", ErrOracleContract, err)
		}
		return Outcome{Verdict: Skip, Range: name}, nil
	case code >= 1 && code <= 127:
		return Outcome{Verdict: Bad}, nil
	default:
		return Outcome{}, fmt.Errorf("%w: exit status %d", ErrOracleContract, code)
	}
}

// lastRangeName scans stdout for RangeMarker lines and returns the last one.
func lastRangeName(out []byte) (string, bool) {
	var name string
	found := false
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if after, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), RangeMarker); ok {
			name = strings.TrimSpace(after)
			found = true
		}
	}
	return name, found
}
