// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/parcel/internal/core/annotate"
)

// Tokyo Night color palette.
var (
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorRed    = lipgloss.Color("#f7768e")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorPurple = lipgloss.Color("#bb9af7")
	ColorGray   = lipgloss.Color("#565f89")
	ColorWhite  = lipgloss.Color("#c0caf5")
)

// Banner ASCII art for the header.
const Banner = `
 ╔═╗╔═╗╦═╗╔═╗╔═╗╦
 ╠═╝╠═╣╠╦╝║  ║╣ ║
 ╩  ╩ ╩╩╚═╚═╝╚═╝╩═╝`

// BannerStyle styles the ASCII art banner.
var BannerStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// SectionStyle styles list section headers.
var SectionStyle = lipgloss.NewStyle().
	Foreground(ColorPurple).
	Bold(true).
	MarginTop(1)

// DividerStyle styles horizontal dividers.
var DividerStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// MutedStyle styles secondary text such as versions and ids.
var MutedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// SelectedStyle styles the row under the cursor.
var SelectedStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// BadgeStyle returns the style for a package badge.
func BadgeStyle(state annotate.State) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch state {
	case annotate.StateInstalled:
		return base.Foreground(ColorGreen)
	case annotate.StateInstallQueued, annotate.StateReinstallQueued:
		return base.Foreground(ColorBlue)
	case annotate.StateUpdateQueued:
		return base.Foreground(ColorYellow)
	case annotate.StateDeleteQueued:
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

// FormTheme returns the huh theme used for prompts.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(ColorBlue).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorGray)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(ColorBlue).Foreground(lipgloss.Color("#1a1b26"))
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(ColorWhite)

	t.Blurred.Title = t.Blurred.Title.Foreground(ColorGray)

	return t
}

// RenderMarkdown renders md for the terminal, wrapped at width. It falls
// back to the raw text when the renderer fails.
func RenderMarkdown(md string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("tokyo-night"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}

	return strings.TrimRight(rendered, "\n") + "\n"
}
