package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// ColorCyan is used for identifiable nouns: folders, features, bundles.
	ColorCyan = lipgloss.Color("14")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorBoldRed is used for the failure marker.
	ColorBoldRed = lipgloss.Color("204")
)

var (
	// StyleNoun styles identifiable nouns.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs (copying, patching, running).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// FormatNoun renders s in the noun style.
func FormatNoun(s string) string {
	return StyleNoun.Render(s)
}

// FormatCheckmark renders a green check followed by msg.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return fmt.Sprintf("%s %s", check, StyleSummary.Render(msg))
}

// FormatFailure renders a red cross followed by msg.
func FormatFailure(msg string) string {
	cross := lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed).Render("✘")
	return fmt.Sprintf("%s %s", cross, msg)
}
