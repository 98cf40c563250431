// Package trial runs the test loop of a bisection: check out a candidate,
// apply the active patchset, ask an oracle for a verdict, restore the tree,
// record the outcome. Oracles are pluggable; the engine only understands the
// four verdict forms good, bad, skip, and skip <range>.
package trial

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/culpritdev/culprit/internal/bisect"
)

// ErrOracleContract reports an oracle outcome the engine cannot classify.
// Nothing is recorded for the trial and the session stays resumable.
var ErrOracleContract = errors.New("oracle outcome not classifiable")

// ErrAborted reports that the operator stopped the run from the interactive
// oracle. Nothing is recorded for the trial.
var ErrAborted = errors.New("run aborted")

// Verdict is an oracle's judgement of one candidate.
type Verdict string

const (
	Good Verdict = "good"
	Bad  Verdict = "bad"
	Skip Verdict = "skip"
)

// Outcome is a verdict plus, for skips, the optional range name that groups
// recurring breakage.
type Outcome struct {
	Verdict Verdict
	Range   string
}

func (o Outcome) String() string {
	if o.Verdict == Skip && o.Range != "" {
		return string(o.Verdict) + " " + o.Range
	}
	return string(o.Verdict)
}

// ParseOutcome reads an outcome in its textual form: "good", "bad", "skip",
// or "skip <range>". Anything else is ErrOracleContract.
func ParseOutcome(s string) (Outcome, error) {
	word, rest, _ := strings.Cut(strings.TrimSpace(s), " ")
	switch Verdict(strings.ToLower(word)) {
	case Good:
		if rest == "" {
			return Outcome{Verdict: Good}, nil
		}
	case Bad:
		if rest == "" {
			return Outcome{Verdict: Bad}, nil
		}
	case Skip:
		name := strings.TrimSpace(rest)
		if name == "" {
			return Outcome{Verdict: Skip}, nil
		}
		if err := bisect.ValidateRangeName(name); err != nil {
			return Outcome{}, fmt.Errorf("%w: %v", ErrOracleContract, err)
		}
		return Outcome{Verdict: Skip, Range: name}, nil
	}
	return Outcome{}, fmt.Errorf("%w: %q", ErrOracleContract, s)
}

// Trial describes the candidate an oracle is asked to judge. The working
// tree is already at the candidate with the patchset applied when Judge is
// called.
type Trial struct {
	Candidate string
	Short     string
	Patchset  bisect.Patchset
}

// Oracle judges one prepared trial.
type Oracle interface {
	Judge(ctx context.Context, t Trial) (Outcome, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, t Trial) (Outcome, error)

func (f OracleFunc) Judge(ctx context.Context, t Trial) (Outcome, error) {
	return f(ctx, t)
}

// Retry wraps an oracle so plain skip verdicts are retried up to extra more
// times, absorbing transient failures like flaky tests or a lost network.
// Named skip ranges mark breakage worth remembering and pass through
// untouched, as do errors and good/bad verdicts.
func Retry(o Oracle, extra int) Oracle {
	if extra <= 0 {
		return o
	}
	return OracleFunc(func(ctx context.Context, t Trial) (Outcome, error) {
		var out Outcome
		var err error
		for attempt := 0; attempt <= extra; attempt++ {
			out, err = o.Judge(ctx, t)
			if err != nil || out.Verdict != Skip || out.Range != "" {
				return out, err
			}
		}
		return out, err
	})
}
