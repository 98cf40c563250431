package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/culpritdev/culprit/internal/ui"
)

var badCmd = &cobra.Command{
	Use:   "bad [rev]",
	Short: "Mark a revision as bad",
	Long: `Mark a revision (HEAD when omitted) as exhibiting the failure and move
the bad endpoint of the search there.

The new bad revision must be an ancestor of (or equal to) the current
bad endpoint; anything else contradicts the session and is refused.

EXAMPLES:
  culprit bad              # HEAD reproduces the failure
  culprit bad 4f1c9aa      # an earlier commit already fails`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := rootCtx
		repo, session := openSession(ctx)
		release := sessionLock(repo)
		defer release()

		commit := resolveRevArg(ctx, repo, args)
		if err := session.MarkBad(ctx, commit); err != nil {
			fatal(err)
		}

		audit := openAudit(repo)
		if err := audit.Record("bad: "+describe(ctx, repo, commit), "culprit bad "+commit); err != nil {
			fatal(err)
		}

		fmt.Printf("%s %s\n", ui.RenderBadIcon(), describe(ctx, repo, commit))
		reportSearchPosition(ctx, repo, session)
	},
}

func init() {
	rootCmd.AddCommand(badCmd)
}
