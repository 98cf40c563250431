package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/culpritdev/culprit/internal/ui"
)

var skipName string

var skipCmd = &cobra.Command{
	Use:   "skip [rev]",
	Short: "Skip a revision that cannot be judged",
	Long: `Record that a revision (HEAD when omitted) can neither be confirmed good
nor bad, usually because it does not build for an unrelated reason.

Skips are grouped into named ranges. Give commits that share the same
unrelated breakage the same --name; once both boundaries of a range are
known, every commit between them is stepped over without being visited.
Without --name the skip gets a throwaway single-commit range.

EXAMPLES:
  culprit skip                          # HEAD is unbuildable, reason unknown
  culprit skip --name openssl-bump      # part of a known broken span
  culprit skip 1c3f2aa --name openssl-bump`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := rootCtx
		repo, session := openSession(ctx)
		release := sessionLock(repo)
		defer release()

		st, err := session.State(ctx)
		if err != nil {
			fatal(err)
		}
		commit := resolveRevArg(ctx, repo, args)

		name := skipName
		if name == "" {
			short, err := repo.ShortHash(ctx, commit)
			if err != nil {
				fatal(err)
			}
			name = "skip-" + short
		}
		if err := session.MarkSkip(ctx, st.Patchset, name, commit); err != nil {
			fatal(err)
		}

		audit := openAudit(repo)
		annotation := fmt.Sprintf("skip %s: %s", name, describe(ctx, repo, commit))
		command := fmt.Sprintf("culprit skip %s --name %s", commit, name)
		if err := audit.Record(annotation, command); err != nil {
			fatal(err)
		}

		fmt.Printf("%s %s (%s)\n", ui.RenderSkipIcon(), describe(ctx, repo, commit), name)
		reportSearchPosition(ctx, repo, session)
	},
}

func init() {
	skipCmd.Flags().StringVar(&skipName, "name", "", "skip range name shared by commits with the same breakage")
	rootCmd.AddCommand(skipCmd)
}
