package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/culpritdev/culprit/internal/bisect"
	"github.com/culpritdev/culprit/internal/debug"
	"github.com/culpritdev/culprit/internal/trial"
	"github.com/culpritdev/culprit/internal/ui"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Check out the next candidate without testing it",
	Long: `Compute the next candidate, check it out, and apply the active patchset,
leaving the tree ready for a trial run by hand. Record the verdict with
culprit good, bad, or skip, then call next again.

When the search is already decided, prints the first bad commit instead.

EXAMPLES:
  culprit next && make test && culprit good`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := rootCtx
		repo, session := openSession(ctx)
		release := sessionLock(repo)
		defer release()

		if err := session.Validate(ctx); err != nil {
			fatal(err)
		}
		restored, err := trial.RecoverInterrupted(ctx, session)
		if err != nil {
			fatal(err)
		}
		if restored {
			debug.Logf("restored tree from previous trial checkpoint")
		}

		selector := bisect.NewSelector(session)
		candidate, done, err := selector.Next(ctx)
		if err != nil {
			fatal(err)
		}
		if done {
			first, err := selector.FirstBad(ctx)
			if err != nil {
				fatal(err)
			}
			printCulprit(ctx, repo, first)
			return
		}

		// Next may have grown the patchset; stage from the state after it.
		st, err := session.State(ctx)
		if err != nil {
			fatal(err)
		}
		if err := trial.Stage(ctx, session, st, candidate); err != nil {
			if errors.Is(err, bisect.ErrPatchConflict) {
				fmt.Printf("%s patchset conflicts at %s\n", ui.RenderSkipIcon(), describe(ctx, repo, candidate))
				fmt.Printf("record it with: culprit skip %s\n", candidate)
				os.Exit(1)
			}
			fatal(err)
		}

		fmt.Printf("checked out %s\n", describe(ctx, repo, candidate))
		if !st.Patchset.Empty() {
			fmt.Printf("patchset applied: %s\n", strings.Join(shortAll(ctx, repo, st.Patchset), " "))
		}
	},
}

func init() {
	rootCmd.AddCommand(nextCmd)
}
