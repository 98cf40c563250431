package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrUnresolvableRef is returned when a reference or symbolic name does not
// resolve to a commit. Callers distinguish "not started yet" from corruption
// with errors.Is.
var ErrUnresolvableRef = errors.New("unresolvable reference")

// ZeroHash is the all-zero object name git uses to assert that a reference
// must not exist in a compare-and-swap update.
const ZeroHash = "0000000000000000000000000000000000000000"

const refLockMaxElapsed = 5 * time.Second

func newRefLockBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxElapsedTime = refLockMaxElapsed
	return bo
}

// isRefLockError reports whether a ref update failed because another git
// process briefly held the ref lock. Background gc, editor plugins, and
// concurrent status watchers all take these locks. A compare-and-swap
// mismatch also says "cannot lock ref" but mentions the expected value, not
// the lock file; that one is permanent and must not be retried.
func isRefLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, ".lock") &&
		(strings.Contains(msg, "File exists") || strings.Contains(msg, "Unable to create")) {
		return true
	}
	return strings.Contains(msg, "Another git process seems to be running")
}

// withRefRetry executes a ref update with retry for transient lock contention.
func withRefRetry(ctx context.Context, op func() error) error {
	bo := newRefLockBackoff()
	return backoff.Retry(func() error {
		err := op()
		if err != nil && isRefLockError(err) {
			return err // Retryable - backoff will retry
		}
		if err != nil {
			return backoff.Permanent(err) // Non-retryable - stop immediately
		}
		return nil
	}, backoff.WithContext(bo, ctx))
}

// Resolve dereferences a reference or symbolic name to a full commit hash.
// Returns ErrUnresolvableRef when the name does not exist.
func (r *Repo) Resolve(ctx context.Context, name string) (string, error) {
	out, err := r.output(ctx, "rev-parse", "--verify", "--quiet", name+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnresolvableRef, name)
	}
	return out, nil
}

// SetRef points name at commit unconditionally, creating it if needed.
func (r *Repo) SetRef(ctx context.Context, name, commit string) error {
	return withRefRetry(ctx, func() error {
		return r.run(ctx, "update-ref", name, commit)
	})
}

// CompareAndSwapRef points name at commit only if it currently points at old.
// Pass ZeroHash as old to require that the reference does not exist yet. The
// check and the update are one atomic git operation; a lost race surfaces as
// an error rather than a silent overwrite.
func (r *Repo) CompareAndSwapRef(ctx context.Context, name, commit, old string) error {
	return withRefRetry(ctx, func() error {
		return r.run(ctx, "update-ref", name, commit, old)
	})
}

// DeleteRef removes a reference. Deleting an absent reference is an error.
func (r *Repo) DeleteRef(ctx context.Context, name string) error {
	return withRefRetry(ctx, func() error {
		return r.run(ctx, "update-ref", "-d", name)
	})
}

// ListRefs returns the full names of all references under prefix. Matching is
// by complete path segment: prefix "refs/x" matches "refs/x/y" but never
// "refs/xy". git for-each-ref already guarantees that.
func (r *Repo) ListRefs(ctx context.Context, prefix string) ([]string, error) {
	return r.lines(ctx, "for-each-ref", "--format=%(refname)", strings.TrimSuffix(prefix, "/"))
}

// RefsPointingAt returns the references under prefix that point at commit.
func (r *Repo) RefsPointingAt(ctx context.Context, prefix, commit string) ([]string, error) {
	return r.lines(ctx, "for-each-ref", "--format=%(refname)",
		"--points-at", commit, strings.TrimSuffix(prefix, "/"))
}
