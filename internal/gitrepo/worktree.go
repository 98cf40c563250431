package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Head returns the commit currently checked out.
func (r *Repo) Head(ctx context.Context) (string, error) {
	return r.Resolve(ctx, "HEAD")
}

// ShortHash returns the abbreviated unambiguous form of a commit hash.
func (r *Repo) ShortHash(ctx context.Context, rev string) (string, error) {
	return r.output(ctx, "rev-parse", "--short", rev)
}

// Subject returns the first line of a commit's message.
func (r *Repo) Subject(ctx context.Context, commit string) (string, error) {
	return r.output(ctx, "log", "-1", "--format=%s", commit)
}

// IsClean reports whether the working tree has no uncommitted changes and no
// untracked files.
func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	out, err := r.output(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out == "", nil
}

// Checkout moves the working tree to commit, detaching HEAD. Uncommitted
// state may be discarded; callers snapshot a checkpoint first when they need
// it back.
func (r *Repo) Checkout(ctx context.Context, commit string) error {
	return r.run(ctx, "checkout", "-q", "--detach", commit)
}

// SnapshotCheckpoint captures the entire working tree state, untracked files
// included, as a commit, then returns the repository to its position as if
// nothing happened. The returned checkpoint commit is what RestoreCheckpoint
// needs to reconstruct this exact state later.
//
// The checkpoint is deliberately left unreferenced between snapshot and
// restore of a single trial; the transient checkpoint ref the session keeps
// around it is the trial executor's concern.
func (r *Repo) SnapshotCheckpoint(ctx context.Context) (string, error) {
	if err := r.run(ctx, "add", "-A"); err != nil {
		return "", fmt.Errorf("checkpoint stage: %w", err)
	}
	// Identity is pinned so checkpoints work in environments with no
	// user.name configured, such as CI.
	if err := r.run(ctx,
		"-c", "user.name=culprit", "-c", "user.email=culprit@localhost",
		"commit", "-q", "--allow-empty", "--no-verify", "-m", "culprit checkpoint"); err != nil {
		return "", fmt.Errorf("checkpoint commit: %w", err)
	}
	checkpoint, err := r.Head(ctx)
	if err != nil {
		return "", err
	}
	if err := r.run(ctx, "reset", "-q", "--mixed", checkpoint+"^"); err != nil {
		return "", fmt.Errorf("checkpoint unwind: %w", err)
	}
	return checkpoint, nil
}

// RestoreCheckpoint reconstructs the working tree state captured by
// SnapshotCheckpoint: tracked content, index position, and untracked files,
// with any artifacts created since the snapshot removed.
//
// The sequence runs in a non-cancellable section. A cancellation that
// arrives mid-restore is honored only after the tree is whole again; the
// tree is never left between the hard reset and the position reset.
func (r *Repo) RestoreCheckpoint(ctx context.Context, checkpoint string) (err error) {
	inner, release := NonCancellable(ctx)
	defer func() { err = errors.Join(err, release()) }()

	if err := r.run(inner, "reset", "-q", "--hard", checkpoint); err != nil {
		return fmt.Errorf("restore reset: %w", err)
	}
	if err := r.run(inner, "clean", "-qfd"); err != nil {
		return fmt.Errorf("restore clean: %w", err)
	}
	if err := r.run(inner, "reset", "-q", "--mixed", checkpoint+"^"); err != nil {
		return fmt.Errorf("restore unwind: %w", err)
	}
	return nil
}

// ApplyPatch merges a commit's changes onto the current working tree without
// committing. On conflict the tree is put back exactly as it was at entry
// and the result is false with no error; a conflict is an answer, not a
// failure.
//
// A merge commit has one candidate diff per parent line. Each mainline is
// attempted in order and the first one that applies cleanly wins; a conflict
// on one line restores the entry state before the next line is tried.
func (r *Repo) ApplyPatch(ctx context.Context, commit string) (bool, error) {
	parents, err := r.Parents(ctx, commit)
	if err != nil {
		return false, err
	}

	var attempts [][]string
	if len(parents) < 2 {
		attempts = [][]string{{"cherry-pick", "--no-commit", commit}}
	} else {
		for i := range parents {
			attempts = append(attempts,
				[]string{"cherry-pick", "--no-commit", "-m", strconv.Itoa(i + 1), commit})
		}
	}

	entry, err := r.SnapshotCheckpoint(ctx)
	if err != nil {
		return false, fmt.Errorf("patch entry snapshot: %w", err)
	}

	for _, args := range attempts {
		if err := r.run(ctx, args...); err == nil {
			return true, nil
		}
		// Clear any in-progress cherry-pick state before rolling back; the
		// quit is a no-op error when the pick failed before starting.
		_ = r.run(ctx, "cherry-pick", "--quit")
		if err := r.RestoreCheckpoint(ctx, entry); err != nil {
			return false, fmt.Errorf("rollback after conflict on %s: %w", commit, err)
		}
	}
	return false, nil
}
