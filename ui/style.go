package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle  = lipgloss.NewStyle().Faint(true)
	boldStyle = lipgloss.NewStyle().Bold(true)
)

// Colorize applies the given color to the text using lipgloss.
// color is the integer representation from Modrinth.
func Colorize(text string, color int) string {
	// Convert Modrinth color int to hex string
	hexColor := fmt.Sprintf("#%06x", color)

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))

	return style.Render(text)
}

// Ok renders text in the success color.
func Ok(text string) string { return okStyle.Render(text) }

// Warn renders text in the warning color.
func Warn(text string) string { return warnStyle.Render(text) }

// Bad renders text in the failure color.
func Bad(text string) string { return badStyle.Render(text) }

// Dim renders de-emphasized text.
func Dim(text string) string { return dimStyle.Render(text) }

// Bold renders emphasized text.
func Bold(text string) string { return boldStyle.Render(text) }
