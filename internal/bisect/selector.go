// Package bisect is the decision engine of a bisection: given a bad
// endpoint, a set of good commits, named skip ranges, and an active
// patchset, it decides which commit to test next and when the search is
// over.
//
// Candidate selection is ancestry-count bisection. Every commit reachable
// from bad but from no good commit and no skip-range marker is a candidate;
// a candidate's rank is how evenly testing it would split the rest, and the
// best-ranked one is the midpoint. When the midpoint is the bad endpoint
// itself the direct axis is exhausted: either a parent of bad is known good
// and the search is done, or the untested parents join the active patchset
// and the search continues deeper with their changes applied on top of every
// later candidate. Growing the patchset moves skip-range state into a fresh
// namespace, which is what reopens the previously blocked region.
//
// All engine state lives in git refs; see Namespace for the layout.
package bisect

import (
	"context"
	"fmt"
)

// Selector computes the next commit to test.
type Selector struct {
	session *Session
}

// NewSelector returns a Selector over the session.
func NewSelector(s *Session) *Selector {
	return &Selector{session: s}
}

// Next returns the next candidate, or done=true once the first bad commit is
// isolated (every parent of bad is known good). The call is idempotent with
// respect to decisions: absent new good/bad/skip writes, it keeps returning
// the same candidate. It may grow the active patchset as a side effect, and
// clears the skip ranges that growth supersedes.
func (sel *Selector) Next(ctx context.Context) (candidate string, done bool, err error) {
	s := sel.session
	st, err := s.State(ctx)
	if err != nil {
		return "", false, err
	}
	goodSet := make(map[string]bool, len(st.Good))
	for _, g := range st.Good {
		goodSet[g] = true
	}
	ps := st.Patchset

	for {
		markers, err := s.Skips.AllMarkers(ctx, ps)
		if err != nil {
			return "", false, err
		}
		exclude := make([]string, 0, len(st.Good)+len(markers))
		exclude = append(exclude, st.Good...)
		exclude = append(exclude, markers...)

		mid, err := s.Repo.Midpoint(ctx, st.Bad, exclude)
		if err != nil {
			return "", false, err
		}
		if mid == "" {
			return "", false, fmt.Errorf("%w: nothing reachable from bad %s", ErrInconsistentHistory, st.Bad)
		}
		if mid != st.Bad {
			return mid, false, nil
		}

		// Only bad itself is left along the good-to-bad axis.
		parents, err := s.Repo.Parents(ctx, st.Bad)
		if err != nil {
			return "", false, err
		}
		for _, parent := range parents {
			if goodSet[parent] {
				return "", true, nil
			}
		}
		if len(parents) == 0 {
			// A root commit with no good below it: it is the first bad.
			return "", true, nil
		}

		// Route around the blocked region: the untested parents join the
		// patchset and the ranges they sit in are superseded. Growth by at
		// least one new commit is what guarantees each iteration makes
		// progress; when there is nothing new to add, no trial can produce
		// new information either.
		var extension []string
		for _, parent := range parents {
			if !ps.Contains(parent) {
				extension = append(extension, parent)
			}
		}
		if len(extension) == 0 {
			return "", false, fmt.Errorf("%w: every parent of %s is already in the patchset", ErrOnlySkips, st.Bad)
		}
		for _, parent := range extension {
			names, err := s.Skips.RangesContaining(ctx, ps, parent)
			if err != nil {
				return "", false, err
			}
			for _, name := range names {
				if err := s.Skips.Clear(ctx, ps, name); err != nil {
					return "", false, err
				}
			}
		}
		ps = ps.Extend(extension...)
		if err := SavePatchset(ctx, s.Repo, s.NS, ps); err != nil {
			return "", false, err
		}
	}
}

// FirstBad resolves the isolated first bad commit once Next reported done.
func (sel *Selector) FirstBad(ctx context.Context) (string, error) {
	return sel.session.Repo.Resolve(ctx, sel.session.NS.BadRef())
}
