// Package gitrepo wraps the git executable with the primitives the bisection
// engine needs: ancestry queries, reference CRUD, checkout, checkpoint
// snapshots of uncommitted state, and speculative patch application.
//
// Everything shells out to git. The engine never parses .git internals
// directly; references are the only persistent state it owns, and git is the
// only writer of them. Commands are pinned to the repository resolved at Open
// time so that cwd changes and worktree indirection cannot route an operation
// to the wrong repository.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/culpritdev/culprit/internal/debug"
)

// Repo is a handle on one git repository. All operations run against the
// repository resolved at Open time, regardless of the process cwd.
type Repo struct {
	// Root is the top-level working tree directory.
	Root string

	// GitDir is the absolute .git directory. The audit log and the session
	// lock live here, beside the refs they describe.
	GitDir string
}

// Open resolves the repository containing dir (or the cwd when dir is empty).
func Open(ctx context.Context, dir string) (*Repo, error) {
	if dir == "" {
		dir = "."
	}
	root, err := gitIn(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %s", dir)
	}
	gitDir, err := gitIn(ctx, dir, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return nil, fmt.Errorf("cannot resolve git dir: %w", err)
	}
	return &Repo{Root: root, GitDir: gitDir}, nil
}

// gitIn runs a one-off git command in dir before a Repo exists.
func gitIn(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// gitCmd creates an exec.Cmd for git pinned to this repository.
//
// GIT_DIR and GIT_WORK_TREE are set explicitly so that git operates on this
// repository even when the process runs inside a different worktree or has
// inherited a stale GIT_DIR. Hooks and templates are disabled; the engine
// performs ref surgery and detached checkouts that user hooks were never
// written to expect.
func (r *Repo) gitCmd(ctx context.Context, args ...string) *exec.Cmd {
	if debug.Enabled() {
		debug.Logf("git %s\n", strings.Join(args, " "))
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Root
	cmd.Env = append(os.Environ(),
		"GIT_HOOKS_PATH=",
		"GIT_TEMPLATE_DIR=",
		"GIT_DIR="+r.GitDir,
		"GIT_WORK_TREE="+r.Root,
	)
	return cmd
}

// run executes git and discards stdout. Failure wraps the combined output,
// which is where git puts the reason.
func (r *Repo) run(ctx context.Context, args ...string) error {
	cmd := r.gitCmd(ctx, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, out)
	}
	return nil
}

// output executes git and returns trimmed stdout.
func (r *Repo) output(ctx context.Context, args ...string) (string, error) {
	cmd := r.gitCmd(ctx, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimSpace(string(out)), nil
}

// lines executes git and returns non-empty stdout lines.
func (r *Repo) lines(ctx context.Context, args ...string) ([]string, error) {
	out, err := r.output(ctx, args...)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}
