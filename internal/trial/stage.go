package trial

import (
	"context"
	"errors"

	"github.com/culpritdev/culprit/internal/bisect"
	"github.com/culpritdev/culprit/internal/gitrepo"
)

// Stage prepares the working tree for a trial driven by hand: it checks out
// the candidate and applies the active patchset behind a checkpoint ref.
// The checkpoint stays set while the patched tree is being tested; whatever
// runs next restores from it before touching the tree again.
//
// A patchset that conflicts on the candidate winds the tree back to the
// clean checkout and surfaces as bisect.ErrPatchConflict.
func Stage(ctx context.Context, s *bisect.Session, st *bisect.State, candidate string) error {
	repo, ns := s.Repo, s.NS
	if err := repo.Checkout(ctx, candidate); err != nil {
		return err
	}
	if st.Patchset.Empty() {
		return nil
	}

	cp, err := repo.SnapshotCheckpoint(ctx)
	if err != nil {
		return err
	}
	if err := repo.SetRef(ctx, ns.CheckpointRef(), cp); err != nil {
		return err
	}

	if _, _, err := applyPatchset(ctx, repo, st.Patchset, candidate); err != nil {
		inner, release := gitrepo.NonCancellable(ctx)
		rerr := repo.RestoreCheckpoint(inner, cp)
		if rerr == nil {
			rerr = repo.DeleteRef(inner, ns.CheckpointRef())
		}
		_ = release()
		return errors.Join(err, rerr)
	}
	return nil
}
