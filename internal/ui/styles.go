// Package ui provides terminal styling for culprit CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Ayu theme color palette
// Dark: https://terminalcolors.com/themes/ayu/dark/
// Light: https://terminalcolors.com/themes/ayu/light/
var (
	// Verdict colors (Ayu theme - adaptive light/dark)
	ColorGood = lipgloss.AdaptiveColor{
		Light: "#86b300", // ayu light bright green
		Dark:  "#c2d94c", // ayu dark bright green
	}
	ColorBad = lipgloss.AdaptiveColor{
		Light: "#f07171", // ayu light bright red
		Dark:  "#f07178", // ayu dark bright red
	}
	ColorSkip = lipgloss.AdaptiveColor{
		Light: "#f2ae49", // ayu light bright yellow
		Dark:  "#ffb454", // ayu dark bright yellow
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99", // ayu light muted
		Dark:  "#6c7680", // ayu dark muted
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6", // ayu light bright blue
		Dark:  "#59c2ff", // ayu dark bright blue
	}
)

// Verdict styles - consistent across all commands
var (
	GoodStyle   = lipgloss.NewStyle().Foreground(ColorGood)
	BadStyle    = lipgloss.NewStyle().Foreground(ColorBad)
	SkipStyle   = lipgloss.NewStyle().Foreground(ColorSkip)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
)

// HeaderStyle for section headers - bold with accent color
var HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

// Status icons - consistent semantic indicators
const (
	IconGood = "✓"
	IconBad  = "✗"
	IconSkip = "-"
	IconInfo = "ℹ"
)

// Separators
const (
	SeparatorLight = "──────────────────────────────────────────"
	SeparatorHeavy = "══════════════════════════════════════════"
)

// RenderGood renders text with good (green) styling
func RenderGood(s string) string {
	return GoodStyle.Render(s)
}

// RenderBad renders text with bad (red) styling
func RenderBad(s string) string {
	return BadStyle.Render(s)
}

// RenderSkip renders text with skip (yellow) styling
func RenderSkip(s string) string {
	return SkipStyle.Render(s)
}

// RenderMuted renders text with muted (gray) styling
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderAccent renders text with accent (blue) styling
func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// RenderHeader renders a section header in uppercase with accent color
func RenderHeader(s string) string {
	return HeaderStyle.Render(strings.ToUpper(s))
}

// RenderSeparator renders the light separator line in muted color
func RenderSeparator() string {
	return MutedStyle.Render(SeparatorLight)
}

// RenderGoodIcon renders the good icon with styling
func RenderGoodIcon() string {
	return GoodStyle.Render(IconGood)
}

// RenderBadIcon renders the bad icon with styling
func RenderBadIcon() string {
	return BadStyle.Render(IconBad)
}

// RenderSkipIcon renders the skip icon with styling
func RenderSkipIcon() string {
	return SkipStyle.Render(IconSkip)
}

// RenderInfoIcon renders the info icon with styling
func RenderInfoIcon() string {
	return AccentStyle.Render(IconInfo)
}
