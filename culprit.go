// Package culprit provides a minimal public API for driving bisections from Go.
//
// Most automation should invoke the culprit binary and parse its output.
// This package exports only the essential types and functions needed for
// Go programs that want to run the decision engine in-process, for example
// a CI service whose oracle never leaves the process.
package culprit

import (
	"context"

	"github.com/culpritdev/culprit/internal/auditlog"
	"github.com/culpritdev/culprit/internal/bisect"
	"github.com/culpritdev/culprit/internal/gitrepo"
	"github.com/culpritdev/culprit/internal/trial"
)

// Core types for working with sessions
type (
	Repo      = gitrepo.Repo
	Session   = bisect.Session
	State     = bisect.State
	Patchset  = bisect.Patchset
	Namespace = bisect.Namespace
	Selector  = bisect.Selector
)

// Trial types for judging candidates
type (
	Trial      = trial.Trial
	Oracle     = trial.Oracle
	OracleFunc = trial.OracleFunc
	Outcome    = trial.Outcome
	Verdict    = trial.Verdict
	Executor   = trial.Executor
	Result     = trial.Result
	AuditLog   = auditlog.Log
)

// Verdict constants
const (
	Good = trial.Good
	Bad  = trial.Bad
	Skip = trial.Skip
)

// DefaultRefBase is where session refs live unless a namespace says otherwise.
const DefaultRefBase = bisect.DefaultBase

// Sentinel errors. Callers match with errors.Is.
var (
	ErrNoSession     = bisect.ErrNoSession
	ErrSessionActive = bisect.ErrSessionActive
	ErrPatchConflict = bisect.ErrPatchConflict
	ErrOnlySkips     = bisect.ErrOnlySkips
)

// Open binds a session to the git repository containing dir, under the
// default ref namespace. Opening reads and writes nothing; the session
// touches refs only when asked to.
func Open(ctx context.Context, dir string) (*Session, error) {
	return OpenAt(ctx, dir, bisect.DefaultBase)
}

// OpenAt is Open with an explicit ref base, for repositories running more
// than one bisection at a time.
func OpenAt(ctx context.Context, dir, refBase string) (*Session, error) {
	repo, err := gitrepo.Open(ctx, dir)
	if err != nil {
		return nil, err
	}
	return bisect.NewSession(repo, bisect.NewNamespace(refBase)), nil
}

// NewSelector returns the candidate selector for a session.
func NewSelector(s *Session) *Selector {
	return bisect.NewSelector(s)
}

// NewExecutor wires a session, an oracle, and an optional audit log into a
// trial loop. A nil log records nothing.
func NewExecutor(s *Session, o Oracle, log *AuditLog) *Executor {
	return trial.NewExecutor(s, o, log)
}

// NewAuditLog opens the append-only history file at path, creating it on
// first write.
func NewAuditLog(path string) *AuditLog {
	return auditlog.New(path)
}

// Retry wraps an oracle so plain skip verdicts are retried up to extra more
// times. Named skip ranges, errors, and good/bad verdicts pass through.
func Retry(o Oracle, extra int) Oracle {
	return trial.Retry(o, extra)
}
