// Package tui provides the terminal user interface for nordgen.
// This file contains the lipgloss styles shared by prompts, progress,
// and the final summary.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	labelStyle = lipgloss.NewStyle().
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	dimStyle = lipgloss.NewStyle().
			Faint(true)

	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
)

// Header returns the styled application banner.
func Header(version string) string {
	return headerStyle.Render("NordVPN Configuration Generator") +
		dimStyle.Render(" v"+version)
}

// Success returns msg rendered as a success line.
func Success(msg string) string {
	return successStyle.Render("✓ ") + msg
}

// Fail returns msg rendered as an error line.
func Fail(msg string) string {
	return errorStyle.Render("✗ ") + msg
}

// SummaryBox renders the end-of-run report.
func SummaryBox(lines ...string) string {
	return summaryBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
