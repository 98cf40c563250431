package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "End the session and delete its refs",
	Long: `Delete every session ref under the configured base: endpoints, patchset,
skip markers, and any trial checkpoint. The audit log stays; it is the
append-only record of what the session decided.

The working tree is left where the last trial put it; check out a branch
to leave the detached commit.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := rootCtx
		repo, session := openSession(ctx)
		release := sessionLock(repo)
		defer release()

		if err := session.Reset(ctx); err != nil {
			fatal(err)
		}
		if err := openAudit(repo).Annotate("reset"); err != nil {
			fatal(err)
		}
		fmt.Printf("session cleared (%s)\n", session.NS.Base())
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
