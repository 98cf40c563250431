package bisect

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/culpritdev/culprit/internal/gitrepo"
)

// Tracker persists and queries named skip ranges. A range is a set of
// boundary markers under one patchset identity; the commits "in" the range
// are the ones enclosed between markers in either direction.
type Tracker struct {
	repo *gitrepo.Repo
	ns   Namespace
}

// NewTracker returns a Tracker over the given repository and namespace.
func NewTracker(repo *gitrepo.Repo, ns Namespace) *Tracker {
	return &Tracker{repo: repo, ns: ns}
}

// ValidateRangeName rejects names that cannot be a single ref path segment.
func ValidateRangeName(name string) error {
	if name == "" {
		return fmt.Errorf("skip range name is empty")
	}
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "-") {
		return fmt.Errorf("skip range name %q starts with %q", name, name[:1])
	}
	if strings.HasSuffix(name, ".lock") {
		return fmt.Errorf("skip range name %q ends with .lock", name)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return fmt.Errorf("skip range name %q contains %q", name, string(r))
		}
	}
	return nil
}

// Mark adds commit as a boundary marker of the named range under the given
// patchset identity.
func (t *Tracker) Mark(ctx context.Context, ps Patchset, name, commit string) error {
	if err := ValidateRangeName(name); err != nil {
		return err
	}
	return t.repo.SetRef(ctx, t.ns.MarkerRef(ps, name, commit), commit)
}

// RangesFor returns the names of all skip ranges recorded under the given
// patchset identity, sorted.
func (t *Tracker) RangesFor(ctx context.Context, ps Patchset) ([]string, error) {
	refs, err := t.repo.ListRefs(ctx, t.ns.MarkersPrefix(ps))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, ref := range refs {
		name, _, ok := t.ns.MarkerParts(ps, ref)
		if ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// MarkersOf returns the boundary commits of one named range.
func (t *Tracker) MarkersOf(ctx context.Context, ps Patchset, name string) ([]string, error) {
	refs, err := t.repo.ListRefs(ctx, t.ns.MarkersPrefix(ps)+"/"+name)
	if err != nil {
		return nil, err
	}
	markers := make([]string, 0, len(refs))
	for _, ref := range refs {
		_, commit, ok := t.ns.MarkerParts(ps, ref)
		if ok {
			markers = append(markers, commit)
		}
	}
	return markers, nil
}

// AllMarkers returns every marker commit under the patchset identity across
// all range names, deduplicated.
func (t *Tracker) AllMarkers(ctx context.Context, ps Patchset) ([]string, error) {
	refs, err := t.repo.ListRefs(ctx, t.ns.MarkersPrefix(ps))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var markers []string
	for _, ref := range refs {
		_, commit, ok := t.ns.MarkerParts(ps, ref)
		if ok && !seen[commit] {
			seen[commit] = true
			markers = append(markers, commit)
		}
	}
	return markers, nil
}

// Contains implements the enclosure test: commit is inside the range when
// some marker reaches it and it reaches some marker. Markers land in any
// topological order, so this is an undirected enclosure, not an interval;
// a marker trivially contains itself.
//
// Each direction of each marker is an independent git query, so the checks
// fan out through a bounded group.
func (t *Tracker) Contains(ctx context.Context, commit string, markers []string) (bool, error) {
	if len(markers) == 0 {
		return false, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	var fromMarker, toMarker atomic.Bool
	for _, marker := range markers {
		g.Go(func() error {
			down, err := t.repo.IsAncestor(gctx, marker, commit)
			if err != nil {
				return err
			}
			if down {
				fromMarker.Store(true)
			}
			up, err := t.repo.IsAncestor(gctx, commit, marker)
			if err != nil {
				return err
			}
			if up {
				toMarker.Store(true)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	return fromMarker.Load() && toMarker.Load(), nil
}

// RangesContaining returns the names of the ranges under the patchset
// identity whose enclosure includes commit.
func (t *Tracker) RangesContaining(ctx context.Context, ps Patchset, commit string) ([]string, error) {
	names, err := t.RangesFor(ctx, ps)
	if err != nil {
		return nil, err
	}
	var containing []string
	for _, name := range names {
		markers, err := t.MarkersOf(ctx, ps, name)
		if err != nil {
			return nil, err
		}
		inside, err := t.Contains(ctx, commit, markers)
		if err != nil {
			return nil, err
		}
		if inside {
			containing = append(containing, name)
		}
	}
	return containing, nil
}

// Clear deletes every marker of the named range under the patchset identity.
// A range is cleared when a grown patchset supersedes it; its markers would
// otherwise keep excluding commits the new patchset may well make testable.
func (t *Tracker) Clear(ctx context.Context, ps Patchset, name string) error {
	refs, err := t.repo.ListRefs(ctx, t.ns.MarkersPrefix(ps)+"/"+name)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := t.repo.DeleteRef(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}
