package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/culpritdev/culprit/internal/bisect"
	"github.com/culpritdev/culprit/internal/gitrepo"
	"github.com/culpritdev/culprit/internal/ui"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a session report",
	Long: `Summarize the session as a report: endpoints, remaining span, patchset,
skip ranges, and the decision history from the audit log. Rendered as
markdown for the terminal; pipe it to capture the raw document.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := rootCtx
		repo, session := openSession(ctx)

		doc, err := buildReport(ctx, repo, session)
		if err != nil {
			fatal(err)
		}
		if err := ui.ToPager(ui.RenderMarkdown(doc), ui.PagerOptions{}); err != nil {
			fatal(err)
		}
	},
}

func buildReport(ctx context.Context, repo *gitrepo.Repo, session *bisect.Session) (string, error) {
	var b strings.Builder
	b.WriteString("# Bisection report\n\n")
	fmt.Fprintf(&b, "Session `%s` in `%s`\n\n", session.NS.Base(), repo.Root)

	st, err := session.State(ctx)
	if errors.Is(err, bisect.ErrNoSession) {
		b.WriteString("No active session.\n")
		return b.String(), nil
	}
	if err != nil {
		return "", err
	}

	b.WriteString("## Endpoints\n\n")
	fmt.Fprintf(&b, "- bad: `%s`\n", describe(ctx, repo, st.Bad))
	for _, g := range st.Good {
		fmt.Fprintf(&b, "- good: `%s`\n", describe(ctx, repo, g))
	}
	b.WriteString("\n")

	if span, err := repo.BisectOrder(ctx, st.Bad, st.Good); err == nil {
		if len(span) <= 1 {
			fmt.Fprintf(&b, "**First bad commit:** `%s`\n\n", describe(ctx, repo, st.Bad))
		} else {
			fmt.Fprintf(&b, "%d candidates remain.\n\n", len(span))
		}
	}

	if !st.Patchset.Empty() {
		b.WriteString("## Patchset\n\n")
		for i, p := range st.Patchset {
			fmt.Fprintf(&b, "%d. `%s`\n", i+1, describe(ctx, repo, p))
		}
		b.WriteString("\n")
	}

	names, err := session.Skips.RangesFor(ctx, st.Patchset)
	if err == nil && len(names) > 0 {
		b.WriteString("## Skip ranges\n\n")
		for _, name := range names {
			markers, err := session.Skips.MarkersOf(ctx, st.Patchset, name)
			if err != nil {
				continue
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", name, strings.Join(shortAll(ctx, repo, markers), ", "))
		}
		b.WriteString("\n")
	}

	entries, err := openAudit(repo).Entries()
	if err == nil && len(entries) > 0 {
		b.WriteString("## History\n\n")
		for _, e := range entries {
			if e.Annotation == "" {
				continue
			}
			if e.Time.IsZero() {
				fmt.Fprintf(&b, "- %s\n", e.Annotation)
				continue
			}
			fmt.Fprintf(&b, "- %s  %s\n", e.Time.Local().Format("2006-01-02 15:04"), e.Annotation)
		}
	}
	return b.String(), nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
