package bisect

import (
	"context"
	"slices"
	"strings"

	"github.com/culpritdev/culprit/internal/gitrepo"
)

// Patchset is the ordered list of commits speculatively applied on top of
// every candidate before testing, first element applied first. The ordered
// hashes are the patchset's identity: skip-range state recorded under one
// patchset is invisible to every other, because "untestable" only means
// untestable with exactly these patches on top.
type Patchset []string

// Empty reports whether no patches are active.
func (p Patchset) Empty() bool { return len(p) == 0 }

// Contains reports whether commit is already part of the patchset.
func (p Patchset) Contains(commit string) bool { return slices.Contains(p, commit) }

// Extend returns a new patchset with the given commits prepended in order,
// before the existing ones. The receiver is not modified.
func (p Patchset) Extend(commits ...string) Patchset {
	out := make(Patchset, 0, len(commits)+len(p))
	out = append(out, commits...)
	return append(out, p...)
}

// Suffix returns the patchset from index i on. Suffixes are the historical
// identities a grown patchset passed through, oldest state last.
func (p Patchset) Suffix(i int) Patchset {
	if i >= len(p) {
		return nil
	}
	return p[i:]
}

// String renders the patchset for humans, not for state.
func (p Patchset) String() string {
	if p.Empty() {
		return "(none)"
	}
	short := make([]string, len(p))
	for i, c := range p {
		if len(c) > 12 {
			short[i] = c[:12]
		} else {
			short[i] = c
		}
	}
	return strings.Join(short, " + ")
}

// LoadPatchset reads the active patchset from the pick refs. No pick refs
// means an empty patchset, which is the valid fresh-session state.
func LoadPatchset(ctx context.Context, repo *gitrepo.Repo, ns Namespace) (Patchset, error) {
	refs, err := repo.ListRefs(ctx, ns.PickPrefix())
	if err != nil {
		return nil, err
	}
	slots := make(map[int]string, len(refs))
	maxIdx := -1
	for _, ref := range refs {
		idx, ok := ns.PickIndex(ref)
		if !ok {
			continue
		}
		commit, err := repo.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		slots[idx] = commit
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	ps := make(Patchset, 0, len(slots))
	for i := 0; i <= maxIdx; i++ {
		if commit, ok := slots[i]; ok {
			ps = append(ps, commit)
		}
	}
	return ps, nil
}

// SavePatchset persists the patchset as pick refs, replacing whatever slots
// were there before.
func SavePatchset(ctx context.Context, repo *gitrepo.Repo, ns Namespace, ps Patchset) error {
	old, err := repo.ListRefs(ctx, ns.PickPrefix())
	if err != nil {
		return err
	}
	for _, ref := range old {
		if err := repo.DeleteRef(ctx, ref); err != nil {
			return err
		}
	}
	for i, commit := range ps {
		if err := repo.SetRef(ctx, ns.PickRef(i), commit); err != nil {
			return err
		}
	}
	return nil
}
