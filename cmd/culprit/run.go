package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/culpritdev/culprit/internal/auditlog"
	"github.com/culpritdev/culprit/internal/bisect"
	"github.com/culpritdev/culprit/internal/config"
	"github.com/culpritdev/culprit/internal/debug"
	"github.com/culpritdev/culprit/internal/gitrepo"
	"github.com/culpritdev/culprit/internal/plan"
	"github.com/culpritdev/culprit/internal/telemetry"
	"github.com/culpritdev/culprit/internal/trial"
)

var (
	runInteractive bool
	runPlanPath    string
	runMaxTrials   int
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command> [args...]",
	Short: "Drive the bisection with an automated trial command",
	Long: `Repeatedly check out the next candidate, apply the active patchset, and
judge it by running the given command in the working tree. The command's
exit status encodes the verdict:

  0        good
  125      skip (cannot judge this commit)
  129      skip as part of a named range; the range name is taken from the
           last "culprit-range: <name>" line the command printed
  1-127    bad
  other    abort the run, nothing recorded

The command sees CULPRIT_COMMIT, CULPRIT_PATCHSET, and
CULPRIT_CACHED_FAILURE in its environment.

EXAMPLES:
  culprit run -- make test
  culprit run --interactive
  culprit run --plan ci-regression.toml
  culprit run --max-trials 5 -- ./reproduce.sh`,
	Run: func(cmd *cobra.Command, args []string) {
		runBisection(args)
	},
}

func runBisection(argv []string) {
	ctx := rootCtx

	var p *plan.Plan
	if runPlanPath != "" {
		loaded, err := plan.Load(runPlanPath)
		if err != nil {
			fatal(err)
		}
		p = loaded
	}

	repo := openRepo(ctx)
	ns := namespace()
	if refBase == "" && p != nil && p.Run.RefBase != "" {
		ns = bisect.NewNamespace(p.Run.RefBase)
	}
	session := bisect.NewSession(repo, ns)

	release := sessionLock(repo)
	defer release()

	audit := openAudit(repo)
	if p != nil {
		startFromPlan(ctx, repo, session, audit, p)
	}

	oracle := buildOracle(argv, p, repo.Root)
	oracle = trial.Retry(oracle, config.GetInt("run.retries"))
	oracle = telemetry.WrapOracle(oracle)

	ex := trial.NewExecutor(session, oracle, audit)
	ex.MaxTrials = runMaxTrials
	if ex.MaxTrials == 0 && p != nil {
		ex.MaxTrials = p.Run.Trials
	}
	ex.Printf = func(format string, a ...any) {
		debug.PrintNormal(format+"\n", a...)
	}

	res, err := ex.Run(ctx)
	if err != nil {
		if errors.Is(err, bisect.ErrOnlySkips) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "every remaining candidate is skipped; narrow the skip ranges or mark one by hand")
			os.Exit(1)
		}
		fatal(err)
	}
	if !res.Done {
		debug.PrintNormal("stopped after %d trials; resume with culprit run\n", res.Trials)
		return
	}
	printCulprit(ctx, repo, res.FirstBad)
}

// startFromPlan begins the session a plan describes. An already active
// session is resumed as-is, so a run cut short by --max-trials picks up
// where it stopped.
func startFromPlan(ctx context.Context, repo *gitrepo.Repo, session *bisect.Session, audit *auditlog.Log, p *plan.Plan) {
	err := session.Start(ctx, p.Bad, p.Good)
	if errors.Is(err, bisect.ErrSessionActive) {
		debug.PrintNormal("resuming active session (culprit reset to start over)\n")
		return
	}
	if err != nil {
		fatal(err)
	}

	if len(p.Patches) > 0 {
		ps := make(bisect.Patchset, 0, len(p.Patches))
		for _, rev := range p.Patches {
			commit, err := repo.Resolve(ctx, rev)
			if err != nil {
				fatal(err)
			}
			ps = append(ps, commit)
		}
		if err := bisect.SavePatchset(ctx, repo, session.NS, ps); err != nil {
			fatal(err)
		}
	}

	st, err := session.State(ctx)
	if err != nil {
		fatal(err)
	}
	annotation := fmt.Sprintf("start plan %s: bad %s good %s",
		p.Plan, describe(ctx, repo, st.Bad), strings.Join(shortAll(ctx, repo, st.Good), " "))
	command := "culprit start " + st.Bad + " " + strings.Join(st.Good, " ")
	if err := audit.Record(annotation, command); err != nil {
		fatal(err)
	}
	if !st.Patchset.Empty() {
		if err := audit.Annotate("patchset: " + strings.Join(shortAll(ctx, repo, st.Patchset), " ")); err != nil {
			fatal(err)
		}
	}
}

// buildOracle resolves the oracle from flags, command arguments, and the
// plan, in that order of precedence.
func buildOracle(argv []string, p *plan.Plan, dir string) trial.Oracle {
	interactive := runInteractive
	if p != nil && p.Oracle.Interactive {
		interactive = true
	}
	if len(argv) == 0 && p != nil {
		argv = p.Oracle.Command
	}

	switch {
	case interactive && len(argv) > 0:
		fatalf("--interactive and a trial command are mutually exclusive")
	case interactive:
		return &trial.InteractiveOracle{}
	case len(argv) == 0:
		fatalf("no trial command; pass one after --, use --plan, or use --interactive")
	}

	env := config.GetStringSlice("oracle.env")
	if p != nil {
		env = append(env, p.Oracle.Env...)
	}
	env = append(env, "CULPRIT_CACHED_FAILURE="+string(config.GetCachedFailurePolicy()))

	oracle := &trial.CommandOracle{
		Argv:   argv,
		Dir:    dir,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Env:    env,
	}
	if p != nil {
		oracle.GoodCodes = p.Oracle.GoodCodes
		oracle.SkipCodes = p.Oracle.SkipCodes
	}
	return oracle
}

func init() {
	runCmd.Flags().BoolVarP(&runInteractive, "interactive", "i", false, "judge each trial at a terminal prompt instead of running a command")
	runCmd.Flags().StringVar(&runPlanPath, "plan", "", "load session and oracle from a TOML plan file")
	runCmd.Flags().IntVar(&runMaxTrials, "max-trials", 0, "stop after this many trials (0 means run to the answer)")
	rootCmd.AddCommand(runCmd)
}
