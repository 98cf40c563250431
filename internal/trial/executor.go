package trial

import (
	"context"
	"errors"
	"fmt"

	"github.com/culpritdev/culprit/internal/auditlog"
	"github.com/culpritdev/culprit/internal/bisect"
	"github.com/culpritdev/culprit/internal/gitrepo"
)

// Executor drives trials until the selector isolates the first bad commit.
// Each trial checks out the candidate, applies the active patchset behind a
// checkpoint, asks the oracle, restores the tree, and records the outcome
// as a ref write paired with an audit-log line.
type Executor struct {
	Session *bisect.Session
	Oracle  Oracle
	Audit   *auditlog.Log

	// MaxTrials stops the run after that many trials; zero means no limit.
	MaxTrials int

	// Printf reports progress lines; nil discards them.
	Printf func(format string, a ...any)

	selector *bisect.Selector
}

// NewExecutor wires an executor over a session.
func NewExecutor(s *bisect.Session, o Oracle, audit *auditlog.Log) *Executor {
	return &Executor{Session: s, Oracle: o, Audit: audit, selector: bisect.NewSelector(s)}
}

// Result is what a run ends with. Done is false when MaxTrials cut the run
// short; the session resumes from where it stopped.
type Result struct {
	Done     bool
	FirstBad string
	Trials   int
}

// Run validates the session, recovers any interrupted trial, and loops
// trials until the search is done or MaxTrials is reached.
func (e *Executor) Run(ctx context.Context) (*Result, error) {
	if err := e.Session.Validate(ctx); err != nil {
		return nil, err
	}
	if err := e.recoverCheckpoint(ctx); err != nil {
		return nil, err
	}

	res := &Result{}
	for {
		if e.MaxTrials > 0 && res.Trials >= e.MaxTrials {
			return res, nil
		}
		candidate, done, err := e.selector.Next(ctx)
		if err != nil {
			return res, err
		}
		if done {
			first, err := e.selector.FirstBad(ctx)
			if err != nil {
				return res, err
			}
			res.Done = true
			res.FirstBad = first
			return res, nil
		}
		if err := e.runTrial(ctx, candidate); err != nil {
			return res, err
		}
		res.Trials++
	}
}

// RecoverInterrupted restores the working tree of a trial that died between
// snapshot and restore, then drops the stale checkpoint ref. It reports
// whether such a checkpoint was found.
func RecoverInterrupted(ctx context.Context, s *bisect.Session) (bool, error) {
	repo, ns := s.Repo, s.NS
	cp, err := repo.Resolve(ctx, ns.CheckpointRef())
	if errors.Is(err, gitrepo.ErrUnresolvableRef) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := repo.RestoreCheckpoint(ctx, cp); err != nil {
		return true, err
	}
	return true, repo.DeleteRef(ctx, ns.CheckpointRef())
}

func (e *Executor) recoverCheckpoint(ctx context.Context) error {
	found, err := RecoverInterrupted(ctx, e.Session)
	if found && err == nil {
		e.printf("restored interrupted trial state")
	}
	return err
}

func (e *Executor) runTrial(ctx context.Context, candidate string) error {
	s := e.Session
	repo, ns := s.Repo, s.NS

	// Next may have grown the patchset; read the state after it.
	st, err := s.State(ctx)
	if err != nil {
		return err
	}
	short, err := repo.ShortHash(ctx, candidate)
	if err != nil {
		return err
	}
	subject, err := repo.Subject(ctx, candidate)
	if err != nil {
		return err
	}

	e.printf("testing %s %s", short, subject)
	if err := repo.Checkout(ctx, candidate); err != nil {
		return err
	}

	// A fresh checkout needs no protection; the checkpoint exists to wind
	// back the patched tree. The ref makes an interrupted trial visible to
	// the next process.
	checkpoint := ""
	if !st.Patchset.Empty() {
		cp, err := repo.SnapshotCheckpoint(ctx)
		if err != nil {
			return err
		}
		if err := repo.SetRef(ctx, ns.CheckpointRef(), cp); err != nil {
			return err
		}
		checkpoint = cp
	}

	out, note, err := e.outcome(ctx, st, candidate, short)
	if err != nil {
		return e.abandon(ctx, checkpoint, err)
	}

	// Restore before recording: a crash between the two leaves a clean
	// tree and an unrecorded trial, never the reverse.
	if checkpoint != "" {
		if err := e.restoreAndDrop(ctx, checkpoint); err != nil {
			return err
		}
	}

	if note != "" {
		e.printf("%s %s (%s)", out, short, note)
	} else {
		e.printf("%s %s", out, short)
	}
	return e.record(ctx, st, candidate, short, subject, out)
}

// outcome applies the patchset and judges the candidate. A conflict on a
// still-pristine tree first consults the skip ranges recorded under the
// identity of the unapplied suffix, since those were scoped to exactly this
// situation before the patchset grew; a hit skips without the oracle.
func (e *Executor) outcome(ctx context.Context, st *bisect.State, candidate, short string) (Outcome, string, error) {
	pos, mutated, err := applyPatchset(ctx, e.Session.Repo, st.Patchset, candidate)
	switch {
	case err == nil:
		out, err := e.Oracle.Judge(ctx, Trial{Candidate: candidate, Short: short, Patchset: st.Patchset})
		return out, "", err
	case errors.Is(err, bisect.ErrPatchConflict):
		if mutated == 0 {
			suffix := st.Patchset.Suffix(pos + 1)
			names, err := e.Session.Skips.RangesContaining(ctx, suffix, candidate)
			if err != nil {
				return Outcome{}, "", err
			}
			if len(names) > 0 {
				return Outcome{Verdict: Skip, Range: names[0]}, "known range", nil
			}
		}
		return Outcome{Verdict: Skip}, "patch conflict", nil
	default:
		return Outcome{}, "", err
	}
}

// applyPatchset cherry-picks each patchset commit the candidate does not
// already contain; a member that is an ancestor of the candidate applies
// vacuously. It returns the failing position and how many picks actually
// mutated the tree; a conflict comes back as ErrPatchConflict.
func applyPatchset(ctx context.Context, repo *gitrepo.Repo, ps bisect.Patchset, candidate string) (pos, mutated int, err error) {
	for i, p := range ps {
		contained, err := repo.IsAncestor(ctx, p, candidate)
		if err != nil {
			return i, mutated, err
		}
		if contained {
			continue
		}
		ok, err := repo.ApplyPatch(ctx, p)
		if err != nil {
			return i, mutated, err
		}
		if !ok {
			return i, mutated, fmt.Errorf("%w: %s", bisect.ErrPatchConflict, p)
		}
		mutated++
	}
	return len(ps), mutated, nil
}

// restoreAndDrop winds the tree back to the checkpoint and retires its ref,
// shielded from cancellation as one section.
func (e *Executor) restoreAndDrop(ctx context.Context, checkpoint string) error {
	repo, ns := e.Session.Repo, e.Session.NS
	inner, release := gitrepo.NonCancellable(ctx)
	err := repo.RestoreCheckpoint(inner, checkpoint)
	if err == nil {
		err = repo.DeleteRef(inner, ns.CheckpointRef())
	}
	if cause := release(); err == nil {
		return cause
	}
	return err
}

// abandon rolls back a trial that produced no verdict. The checkpoint, when
// present, is restored even when the cause is cancellation.
func (e *Executor) abandon(ctx context.Context, checkpoint string, cause error) error {
	if checkpoint == "" {
		return cause
	}
	inner, release := gitrepo.NonCancellable(ctx)
	err := e.Session.Repo.RestoreCheckpoint(inner, checkpoint)
	if err == nil {
		err = e.Session.Repo.DeleteRef(inner, e.Session.NS.CheckpointRef())
	}
	_ = release()
	if err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// record writes the outcome ref and the audit line as one non-cancellable
// step. Skips without a range name get one derived from the candidate.
func (e *Executor) record(ctx context.Context, st *bisect.State, candidate, short, subject string, out Outcome) (err error) {
	s := e.Session
	inner, release := gitrepo.NonCancellable(ctx)
	defer func() { err = errors.Join(err, release()) }()

	switch out.Verdict {
	case Good:
		if err := s.MarkGood(inner, candidate); err != nil {
			return err
		}
		return e.audit(fmt.Sprintf("good: %s %s", short, subject), "culprit good "+candidate)
	case Bad:
		if err := s.MarkBad(inner, candidate); err != nil {
			return err
		}
		return e.audit(fmt.Sprintf("bad: %s %s", short, subject), "culprit bad "+candidate)
	case Skip:
		name := out.Range
		if name == "" {
			name = "skip-" + short
		}
		if err := s.MarkSkip(inner, st.Patchset, name, candidate); err != nil {
			return err
		}
		annotation := fmt.Sprintf("skip %s: %s %s", name, short, subject)
		return e.audit(annotation, fmt.Sprintf("culprit skip %s --name %s", candidate, name))
	}
	return fmt.Errorf("%w: verdict %q", ErrOracleContract, out.Verdict)
}

func (e *Executor) audit(annotation, command string) error {
	if e.Audit == nil {
		return nil
	}
	return e.Audit.Record(annotation, command)
}

func (e *Executor) printf(format string, a ...any) {
	if e.Printf != nil {
		e.Printf(format, a...)
	}
}
