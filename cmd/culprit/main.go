package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/culpritdev/culprit/internal/config"
	"github.com/culpritdev/culprit/internal/debug"
	"github.com/culpritdev/culprit/internal/telemetry"
	"github.com/culpritdev/culprit/internal/ui"
)

var (
	repoDir     string // --dir: repository to operate on
	refBase     string // --base: ref namespace override
	verboseFlag bool
	quietFlag   bool
	noColorFlag bool

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

func init() {
	// Initialize viper configuration
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	// Register persistent flags
	rootCmd.PersistentFlags().StringVar(&repoDir, "dir", "", "Repository to operate on (default: discovered from the working directory)")
	rootCmd.PersistentFlags().StringVar(&refBase, "base", "", "Ref namespace for session state (default: config ref-base, or refs/culprit)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")

	// Add --version flag to root command (same behavior as version subcommand)
	rootCmd.Flags().BoolP("version", "V", false, "Print version information")
}

var rootCmd = &cobra.Command{
	Use:   "culprit",
	Short: "culprit - Git bisection that survives broken commits",
	Long: `Culprit isolates the first bad commit in a git history.

All session state lives in git refs under refs/culprit/, so a run can be
interrupted at any point and the next invocation resumes the same search.
Commits that cannot be judged are skipped into named ranges, and a
patchset of fix commits can be carried onto every later candidate so
unrelated breakage stops hiding the verdict.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Handle --version flag on root command
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("culprit version %s (%s)\n", Version, Build)
			return
		}
		// No subcommand - show help
		_ = cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupSignalContext()
		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)
		applyColorPolicy()
		if err := telemetry.Init(rootCtx, "culprit", Version); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: telemetry init failed: %v\n", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		telemetry.Shutdown(ctx)
		cancel()

		if rootCancel != nil {
			rootCancel()
		}
	},
}

// setupSignalContext creates the root context cancelled on SIGINT/SIGTERM.
// Trials watch it; ref writes and checkpoint restores run inside
// non-cancellable sections, so an interrupt never leaves a half-recorded
// verdict or a patched tree behind.
func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// applyColorPolicy disables color for --no-color, the no-color config key,
// or when the terminal conventions say so (NO_COLOR, CLICOLOR, no TTY).
func applyColorPolicy() {
	if noColorFlag || config.GetBool("no-color") || !ui.ShouldUseColor() {
		ui.DisableColor()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
