package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/culpritdev/culprit/internal/auditlog"
	"github.com/culpritdev/culprit/internal/bisect"
	"github.com/culpritdev/culprit/internal/config"
	"github.com/culpritdev/culprit/internal/gitrepo"
	"github.com/culpritdev/culprit/internal/lockfile"
	"github.com/culpritdev/culprit/internal/ui"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the search stands",
	Long: `Show the session's endpoints, the remaining span, the active patchset,
recorded skip ranges, and the trial count.

With --watch the view re-renders whenever the session refs or the audit
log change, so a run in another terminal can be followed live.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := rootCtx
		repo, session := openSession(ctx)

		fmt.Print(renderStatus(ctx, repo, session))
		if statusWatch {
			watchStatus(ctx, repo, session)
		}
	},
}

func renderStatus(ctx context.Context, repo *gitrepo.Repo, session *bisect.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", ui.RenderHeader("culprit session"), ui.RenderMuted(session.NS.Base()))

	st, err := session.State(ctx)
	if errors.Is(err, bisect.ErrNoSession) {
		fmt.Fprintf(&b, "%s no active session (culprit start <bad> <good>)\n", ui.RenderInfoIcon())
		return b.String()
	}
	if err != nil {
		fmt.Fprintf(&b, "%s\n", ui.RenderBad("state unreadable: "+err.Error()))
		return b.String()
	}

	fmt.Fprintf(&b, "  %s %s\n", ui.RenderBad("bad: "), describe(ctx, repo, st.Bad))
	for _, g := range st.Good {
		fmt.Fprintf(&b, "  %s %s\n", ui.RenderGood("good:"), describe(ctx, repo, g))
	}

	span, err := repo.BisectOrder(ctx, st.Bad, st.Good)
	if err == nil {
		switch n := len(span); {
		case n <= 1:
			fmt.Fprintf(&b, "  %s %s\n", ui.RenderAccent("suspect:"), describe(ctx, repo, st.Bad))
		default:
			fmt.Fprintf(&b, "  span: %d candidates\n", n)
		}
	}

	if !st.Patchset.Empty() {
		fmt.Fprintf(&b, "  patchset: %s\n", strings.Join(shortAll(ctx, repo, st.Patchset), " "))
	}

	if names, err := session.Skips.RangesFor(ctx, st.Patchset); err == nil && len(names) > 0 {
		parts := make([]string, 0, len(names))
		for _, name := range names {
			markers, err := session.Skips.MarkersOf(ctx, st.Patchset, name)
			if err != nil {
				parts = append(parts, name)
				continue
			}
			parts = append(parts, fmt.Sprintf("%s (%d)", name, len(markers)))
		}
		fmt.Fprintf(&b, "  skip ranges: %s\n", strings.Join(parts, ", "))
	}

	if entries, err := openAudit(repo).Entries(); err == nil {
		fmt.Fprintf(&b, "  trials recorded: %d\n", countTrials(entries))
	}

	if held, info := lockfile.Probe(repo.GitDir); held && info != nil {
		fmt.Fprintf(&b, "  %s\n", ui.RenderMuted(fmt.Sprintf("run in flight: pid %d since %s", info.PID, info.StartedAt.Format(time.RFC3339))))
	}
	return b.String()
}

// countTrials counts replayable verdict commands, which is one line per
// recorded trial whether it came from run or from marking by hand.
func countTrials(entries []auditlog.Entry) int {
	n := 0
	for _, e := range entries {
		for _, verb := range []string{"culprit good ", "culprit bad ", "culprit skip "} {
			if strings.HasPrefix(e.Command, verb) {
				n++
				break
			}
		}
	}
	return n
}

// watchStatus re-renders on ref-store and audit-log changes until
// interrupted. Events are debounced so a burst of ref writes paints once.
func watchStatus(ctx context.Context, repo *gitrepo.Repo, session *bisect.Session) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fatal(err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(repo.GitDir); err != nil {
		fatal(err)
	}
	// Loose refs live in nested directories; watch what exists now and
	// pick up new directories as they appear.
	refsDir := filepath.Join(repo.GitDir, filepath.FromSlash(session.NS.Prefix()))
	_ = watcher.Add(filepath.Join(repo.GitDir, "refs"))
	_ = watcher.Add(refsDir)

	fmt.Fprintf(os.Stderr, "\nWatching for changes... (Press Ctrl+C to exit)\n")

	debounce := config.GetDuration("watch.debounce")
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(os.Stderr, "\nStopped watching.\n")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				fmt.Print("\n" + renderStatus(ctx, repo, session))
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "re-render on ref-store and audit-log changes")
	rootCmd.AddCommand(statusCmd)
}
