package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/culpritdev/culprit/internal/auditlog"
	"github.com/culpritdev/culprit/internal/timeparsing"
	"github.com/culpritdev/culprit/internal/ui"
)

var (
	logSince  string
	logFormat string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Replay the session audit log",
	Long: `Print the audit log: every decision of the session in order, each an
annotation paired with the replayable culprit command that records it.
The log is append-only and survives reset.

--since accepts compact durations (2h, 1d), dates (2026-08-01), RFC3339
timestamps, and natural language ("yesterday", "last monday").

EXAMPLES:
  culprit log
  culprit log --since 2d
  culprit log --since "last monday" --format yaml`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repo := openRepo(rootCtx)
		entries, err := openAudit(repo).Entries()
		if err != nil {
			fatal(err)
		}

		if logSince != "" {
			cutoff, err := parseSince(logSince, time.Now())
			if err != nil {
				fatal(err)
			}
			entries = auditlog.Since(entries, cutoff)
		}

		var content string
		switch logFormat {
		case "text":
			content = renderLogText(entries)
		case "yaml":
			data, err := yaml.Marshal(entries)
			if err != nil {
				fatal(err)
			}
			content = string(data)
		default:
			fatalf("unknown format %q (valid: text, yaml)", logFormat)
		}
		if err := ui.ToPager(content, ui.PagerOptions{}); err != nil {
			fatal(err)
		}
	},
}

// parseSince resolves the --since value. A bare duration reads as that long
// ago; everything else goes through the layered time parser.
func parseSince(s string, now time.Time) (time.Time, error) {
	if timeparsing.IsCompactDuration(s) && !strings.HasPrefix(s, "+") && !strings.HasPrefix(s, "-") {
		return timeparsing.ParseCompactDuration("-"+s, now)
	}
	return timeparsing.ParseRelativeTime(s, now)
}

func renderLogText(entries []auditlog.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		if e.Annotation != "" {
			stamp := ""
			if !e.Time.IsZero() {
				stamp = e.Time.Local().Format("2006-01-02 15:04:05") + "  "
			}
			fmt.Fprintf(&b, "%s%s\n", ui.RenderMuted(stamp), decorateAnnotation(e.Annotation))
		}
		if e.Command != "" {
			fmt.Fprintf(&b, "    %s\n", e.Command)
		}
	}
	return b.String()
}

// decorateAnnotation colors verdict annotations the way status renders them.
func decorateAnnotation(note string) string {
	switch {
	case strings.HasPrefix(note, "good"):
		return ui.RenderGood(note)
	case strings.HasPrefix(note, "bad"):
		return ui.RenderBad(note)
	case strings.HasPrefix(note, "skip"):
		return ui.RenderSkip(note)
	}
	return note
}

func init() {
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries from this time on (2d, 2026-08-01, \"last monday\")")
	logCmd.Flags().StringVar(&logFormat, "format", "text", "output format: text or yaml")
	rootCmd.AddCommand(logCmd)
}
