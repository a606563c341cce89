// Package tui implements the Bubble Tea package browser for parcel.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/parcel/internal/styles"
)

var (
	// Tab bar.
	activeTabStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue).
			Bold(true).
			Underline(true).
			PaddingRight(2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(styles.ColorGray).
				PaddingRight(2)

	// Search prompt.
	promptStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			Foreground(styles.ColorBlue).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(styles.ColorPurple).
			Bold(true).
			PaddingLeft(1)

	normalStyle = lipgloss.NewStyle().PaddingLeft(3)

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(styles.ColorBlue).
				Bold(true).
				PaddingLeft(1)

	termStyle = lipgloss.NewStyle().
			Foreground(styles.ColorWhite).
			Italic(true)

	wishlistMark = lipgloss.NewStyle().
			Foreground(styles.ColorYellow).
			Render("★")

	statusStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.ColorRed).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			PaddingLeft(1)
)

const iconSelected = "▌"
