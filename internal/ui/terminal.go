package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether stdout is a TTY.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsAgentMode reports whether an automation agent is driving the CLI.
// Agents get plain, parseable output regardless of TTY state.
func IsAgentMode() bool {
	return os.Getenv("CULPRIT_AGENT") != ""
}

// ShouldUseColor decides whether output gets styled, following the
// conventions at no-color.org and bixense.com/clicolors: NO_COLOR wins,
// then CLICOLOR_FORCE, then CLICOLOR=0, then TTY detection.
func ShouldUseColor() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	if force := os.Getenv("CLICOLOR_FORCE"); force != "" && force != "0" {
		return true
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	return IsTerminal()
}

// DisableColor turns off all lipgloss styling for the rest of the process.
// The root command calls it when --no-color, the no-color config key, or
// the color environment conventions ask for plain output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
