package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/culpritdev/culprit/internal/debug"
)

var startCmd = &cobra.Command{
	Use:   "start <bad> <good> [<good>...]",
	Short: "Begin a bisection session",
	Long: `Begin a bisection session between a known-bad and one or more
known-good revisions.

The endpoints are resolved and consistency-checked before anything is
written: a good revision that descends from bad (or equals it) is refused.
Session state is stored as git refs under the namespace (default
refs/culprit/), so the search survives process restarts and is visible to
plain git tooling.

EXAMPLES:

  culprit start HEAD v1.4.0
  culprit start badbranch goodtag1 goodtag2
  culprit start --base refs/hunt/tab-crash HEAD v1.4.0`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := rootCtx
		repo, session := openSession(ctx)
		release := sessionLock(repo)
		defer release()

		bad, goods := args[0], args[1:]
		if err := session.Start(ctx, bad, goods); err != nil {
			fatal(err)
		}

		st, err := session.State(ctx)
		if err != nil {
			fatal(err)
		}

		audit := openAudit(repo)
		annotation := fmt.Sprintf("start: bad %s good %s",
			shortCommit(st.Bad), strings.Join(shortAll(ctx, repo, st.Good), " "))
		command := "culprit start " + st.Bad + " " + strings.Join(st.Good, " ")
		if err := audit.Record(annotation, command); err != nil {
			fatal(err)
		}

		span, err := repo.BisectOrder(ctx, st.Bad, st.Good)
		if err != nil {
			fatal(err)
		}
		debug.PrintNormal("bisecting %d candidates\n", len(span))
		reportSearchPosition(ctx, repo, session)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
