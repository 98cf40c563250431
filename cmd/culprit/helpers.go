package main

import (
	"context"
	"fmt"
	"os"

	"github.com/culpritdev/culprit/internal/auditlog"
	"github.com/culpritdev/culprit/internal/bisect"
	"github.com/culpritdev/culprit/internal/config"
	"github.com/culpritdev/culprit/internal/debug"
	"github.com/culpritdev/culprit/internal/gitrepo"
	"github.com/culpritdev/culprit/internal/lockfile"
	"github.com/culpritdev/culprit/internal/ui"
)

// fatal prints an error and exits. Run functions use it instead of
// returning so cobra does not print usage text after runtime failures.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", a...)
	os.Exit(1)
}

// openRepo resolves the repository from --dir or the working directory.
func openRepo(ctx context.Context) *gitrepo.Repo {
	repo, err := gitrepo.Open(ctx, repoDir)
	if err != nil {
		fatal(err)
	}
	return repo
}

// namespace resolves the ref namespace: --base beats the ref-base config key.
func namespace() bisect.Namespace {
	if refBase != "" {
		return bisect.NewNamespace(refBase)
	}
	return bisect.NewNamespace(config.GetRefBase())
}

// openSession opens the repository and binds a session over it.
func openSession(ctx context.Context) (*gitrepo.Repo, *bisect.Session) {
	repo := openRepo(ctx)
	return repo, bisect.NewSession(repo, namespace())
}

// sessionLock takes the per-repository lock that mutating commands hold for
// their lifetime. Release via the returned func.
func sessionLock(repo *gitrepo.Repo) func() {
	lock, err := lockfile.Acquire(repo.GitDir, repo.Root, Version)
	if err != nil {
		fatal(err)
	}
	return func() {
		if err := lock.Release(); err != nil {
			debug.Logf("release session lock: %v\n", err)
		}
	}
}

// openAudit returns the audit log, honoring the log-path config key.
func openAudit(repo *gitrepo.Repo) *auditlog.Log {
	if path := config.GetString("log-path"); path != "" {
		return auditlog.New(path)
	}
	return auditlog.New(auditlog.DefaultPath(repo.GitDir))
}

// resolveRevArg resolves an optional revision argument, defaulting to HEAD.
func resolveRevArg(ctx context.Context, repo *gitrepo.Repo, args []string) string {
	rev := "HEAD"
	if len(args) > 0 {
		rev = args[0]
	}
	commit, err := repo.Resolve(ctx, rev)
	if err != nil {
		fatal(err)
	}
	return commit
}

// shortAll abbreviates a list of commit hashes for progress lines.
func shortAll(ctx context.Context, repo *gitrepo.Repo, commits []string) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		short, err := repo.ShortHash(ctx, c)
		if err != nil {
			short = shortCommit(c)
		}
		out = append(out, short)
	}
	return out
}

// describe formats a commit as "shorthash subject" for progress lines.
func describe(ctx context.Context, repo *gitrepo.Repo, commit string) string {
	short, err := repo.ShortHash(ctx, commit)
	if err != nil {
		return commit
	}
	subject, err := repo.Subject(ctx, commit)
	if err != nil {
		return short
	}
	return short + " " + ui.TruncateSimple(subject, 72)
}

// reportSearchPosition prints where the search stands: the culprit when it
// is isolated, otherwise the next candidate to test. Selecting may grow the
// patchset, which is part of advancing the search, so callers hold the
// session lock.
func reportSearchPosition(ctx context.Context, repo *gitrepo.Repo, s *bisect.Session) {
	sel := bisect.NewSelector(s)
	candidate, done, err := sel.Next(ctx)
	if err != nil {
		fatal(err)
	}
	if done {
		first, err := sel.FirstBad(ctx)
		if err != nil {
			fatal(err)
		}
		printCulprit(ctx, repo, first)
		return
	}
	debug.PrintNormal("next candidate: %s\n", describe(ctx, repo, candidate))
}

// printCulprit prints the final verdict banner. Quiet mode prints just the
// hash so scripts can capture it.
func printCulprit(ctx context.Context, repo *gitrepo.Repo, commit string) {
	if debug.IsQuiet() {
		fmt.Println(commit)
		return
	}
	fmt.Println(ui.RenderSeparator())
	fmt.Printf("%s %s\n", ui.RenderBad("first bad commit:"), describe(ctx, repo, commit))
	fmt.Println(ui.RenderSeparator())
}
