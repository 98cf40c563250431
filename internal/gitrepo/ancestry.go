package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// IsAncestor reports whether a is an ancestor of, or equal to, b.
func (r *Repo) IsAncestor(ctx context.Context, a, b string) (bool, error) {
	cmd := r.gitCmd(ctx, "merge-base", "--is-ancestor", a, b)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("git merge-base --is-ancestor %s %s: %w\n%s", a, b, err, out)
}

// Parents returns the parent hashes of commit in parent order. A root commit
// has none; more than one means a merge.
func (r *Repo) Parents(ctx context.Context, commit string) ([]string, error) {
	out, err := r.output(ctx, "rev-list", "--parents", "-n", "1", commit)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no commit at %s", commit)
	}
	return fields[1:], nil
}

// BisectOrder returns the commits reachable from bad but from none of the
// excluded tips, ranked best bisection candidate first.
//
// For each candidate, git computes how evenly testing it would split the
// remaining range: the rank is min(reachable, unreachable) over the other
// candidates, and the list is sorted by rank descending. Candidates of
// equal rank appear in object-id order, so the head is one optimal
// midpoint among possibly several; Midpoint makes the authoritative pick.
func (r *Repo) BisectOrder(ctx context.Context, bad string, exclude []string) ([]string, error) {
	args := []string{"rev-list", "--bisect-all", bad}
	for _, tip := range exclude {
		args = append(args, "^"+tip)
	}
	lines, err := r.lines(ctx, args...)
	if err != nil {
		return nil, err
	}
	commits := make([]string, 0, len(lines))
	for _, line := range lines {
		// Lines look like "<hash> (dist=N)"; the rank is implied by order.
		hash, _, _ := strings.Cut(line, " ")
		if hash != "" {
			commits = append(commits, hash)
		}
	}
	return commits, nil
}

// Midpoint returns the commit that splits the range reachable from bad but
// from none of the excluded tips most evenly, the same choice git bisect
// makes. Equally even splits resolve by the shape of the history, never by
// hash values. When the range is down to the bad tip alone the midpoint is
// bad itself; an empty range returns "".
func (r *Repo) Midpoint(ctx context.Context, bad string, exclude []string) (string, error) {
	args := []string{"rev-list", "--bisect", bad}
	for _, tip := range exclude {
		args = append(args, "^"+tip)
	}
	lines, err := r.lines(ctx, args...)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", nil
	}
	return lines[0], nil
}
