package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/culpritdev/culprit/internal/ui"
)

var goodCmd = &cobra.Command{
	Use:   "good [rev]",
	Short: "Mark a revision as good",
	Long: `Mark a revision (HEAD when omitted) as known good and report where the
search stands.

A revision that is a descendant of the current bad endpoint cannot be
good; marking it is refused instead of silently corrupting the session.

EXAMPLES:
  culprit good             # HEAD built and passed
  culprit good v1.4.2      # an older tag is known clean`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := rootCtx
		repo, session := openSession(ctx)
		release := sessionLock(repo)
		defer release()

		commit := resolveRevArg(ctx, repo, args)
		if err := session.MarkGood(ctx, commit); err != nil {
			fatal(err)
		}

		audit := openAudit(repo)
		if err := audit.Record("good: "+describe(ctx, repo, commit), "culprit good "+commit); err != nil {
			fatal(err)
		}

		fmt.Printf("%s %s\n", ui.RenderGoodIcon(), describe(ctx, repo, commit))
		reportSearchPosition(ctx, repo, session)
	},
}

func init() {
	rootCmd.AddCommand(goodCmd)
}
