package bisect

import (
	"context"
	"fmt"

	"github.com/culpritdev/culprit/internal/gitrepo"
)

// Session ties the decision engine to one repository and ref namespace.
// Everything a session knows lives in refs; there is no other store, and a
// process restart resumes from exactly what the refs say.
type Session struct {
	Repo  *gitrepo.Repo
	NS    Namespace
	Skips *Tracker
}

// NewSession returns a Session over the given repository and namespace.
func NewSession(repo *gitrepo.Repo, ns Namespace) *Session {
	return &Session{Repo: repo, NS: ns, Skips: NewTracker(repo, ns)}
}

// State is the search state read from the refs at one instant.
type State struct {
	// Bad is the known-bad endpoint.
	Bad string

	// Good holds the known-good commit hashes.
	Good []string

	// Patchset is the active patchset, first patch applied first.
	Patchset Patchset
}

// IsGood reports whether commit is one of the known-good commits.
func (st *State) IsGood(commit string) bool {
	for _, g := range st.Good {
		if g == commit {
			return true
		}
	}
	return false
}

// State loads the current search state. ErrNoSession when no bad pointer
// exists yet.
func (s *Session) State(ctx context.Context) (*State, error) {
	bad, err := s.Repo.Resolve(ctx, s.NS.BadRef())
	if err != nil {
		return nil, fmt.Errorf("%w: %s not set", ErrNoSession, s.NS.BadRef())
	}
	refs, err := s.Repo.ListRefs(ctx, s.NS.Prefix())
	if err != nil {
		return nil, err
	}
	var good []string
	for _, ref := range refs {
		if hash, ok := s.NS.GoodHash(ref); ok {
			good = append(good, hash)
		}
	}
	ps, err := LoadPatchset(ctx, s.Repo, s.NS)
	if err != nil {
		return nil, err
	}
	return &State{Bad: bad, Good: good, Patchset: ps}, nil
}

// Start begins a session with the given endpoints. Everything is resolved
// and consistency-checked before the first ref is written; an existing
// session is never overwritten.
func (s *Session) Start(ctx context.Context, bad string, goods []string) error {
	badHash, err := s.Repo.Resolve(ctx, bad)
	if err != nil {
		return fmt.Errorf("bad endpoint: %w", err)
	}
	goodHashes := make([]string, 0, len(goods))
	for _, g := range goods {
		hash, err := s.Repo.Resolve(ctx, g)
		if err != nil {
			return fmt.Errorf("good endpoint: %w", err)
		}
		if err := s.checkGoodAgainstBad(ctx, hash, badHash); err != nil {
			return err
		}
		goodHashes = append(goodHashes, hash)
	}
	if err := s.Repo.CompareAndSwapRef(ctx, s.NS.BadRef(), badHash, gitrepo.ZeroHash); err != nil {
		return fmt.Errorf("%w: %s exists (run reset first)", ErrSessionActive, s.NS.BadRef())
	}
	for _, hash := range goodHashes {
		if err := s.Repo.SetRef(ctx, s.NS.GoodRef(hash), hash); err != nil {
			return err
		}
	}
	return nil
}

// MarkGood records commit as known good. The write is refused, with nothing
// recorded, when it would contradict the bad pointer.
func (s *Session) MarkGood(ctx context.Context, commit string) error {
	hash, err := s.Repo.Resolve(ctx, commit)
	if err != nil {
		return err
	}
	bad, err := s.Repo.Resolve(ctx, s.NS.BadRef())
	if err == nil {
		if err := s.checkGoodAgainstBad(ctx, hash, bad); err != nil {
			return err
		}
	}
	return s.Repo.SetRef(ctx, s.NS.GoodRef(hash), hash)
}

// MarkBad moves the bad pointer to commit. The move is refused when a known
// good commit descends from the new endpoint.
func (s *Session) MarkBad(ctx context.Context, commit string) error {
	hash, err := s.Repo.Resolve(ctx, commit)
	if err != nil {
		return err
	}
	st, err := s.State(ctx)
	if err == nil {
		for _, g := range st.Good {
			if err := s.checkGoodAgainstBad(ctx, g, hash); err != nil {
				return err
			}
		}
	}
	return s.Repo.SetRef(ctx, s.NS.BadRef(), hash)
}

// MarkSkip records commit as a boundary marker of the named skip range under
// the active patchset.
func (s *Session) MarkSkip(ctx context.Context, ps Patchset, name, commit string) error {
	hash, err := s.Repo.Resolve(ctx, commit)
	if err != nil {
		return err
	}
	return s.Skips.Mark(ctx, ps, name, hash)
}

// Validate checks the invariant the whole search rests on: no good commit
// may sit at or above the bad endpoint. Violations mean the refs were edited
// by hand; there is no automatic recovery.
func (s *Session) Validate(ctx context.Context) error {
	st, err := s.State(ctx)
	if err != nil {
		return err
	}
	for _, g := range st.Good {
		if err := s.checkGoodAgainstBad(ctx, g, st.Bad); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) checkGoodAgainstBad(ctx context.Context, good, bad string) error {
	if good == bad {
		return fmt.Errorf("%w: %s is marked both good and bad", ErrInconsistentHistory, good)
	}
	descends, err := s.Repo.IsAncestor(ctx, bad, good)
	if err != nil {
		return err
	}
	if descends {
		return fmt.Errorf("%w: good %s descends from bad %s", ErrInconsistentHistory, good, bad)
	}
	return nil
}

// Reset deletes every session ref under the namespace. The audit log is not
// touched; history of past decisions stays reviewable.
func (s *Session) Reset(ctx context.Context) error {
	refs, err := s.Repo.ListRefs(ctx, s.NS.Prefix())
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := s.Repo.DeleteRef(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}
