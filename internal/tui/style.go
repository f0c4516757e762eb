package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary = lipgloss.Color("#7C3AED")
	Green   = lipgloss.Color("#10B981")
	Red     = lipgloss.Color("#EF4444")
	Yellow  = lipgloss.Color("#F59E0B")
	Cyan    = lipgloss.Color("#06B6D4")
	Dim     = lipgloss.Color("#6B7280")
	Border  = lipgloss.Color("#374151")

	Banner = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(Dim).
			Italic(true)

	Bold    = lipgloss.NewStyle().Bold(true)
	DimText = lipgloss.NewStyle().Foreground(Dim)

	Healthy  = lipgloss.NewStyle().Foreground(Green).Bold(true)
	Degraded = lipgloss.NewStyle().Foreground(Yellow).Bold(true)
	Failing  = lipgloss.NewStyle().Foreground(Red).Bold(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1).
		Width(24)

	CardTitle = lipgloss.NewStyle().Foreground(Dim)
	CardValue = lipgloss.NewStyle().Bold(true).MarginTop(0)

	Section = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		MarginTop(1)

	Notice = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Red).
		Foreground(Red).
		Padding(0, 1)

	Info = lipgloss.NewStyle().Foreground(Green)

	Key = lipgloss.NewStyle().Foreground(Dim).Width(14)

	Help = lipgloss.NewStyle().Foreground(Dim).MarginTop(1)
)

// GradeStyle colours a ping host badge by its grade
func GradeStyle(grade string) lipgloss.Style {
	switch grade {
	case "healthy":
		return Healthy
	case "degraded":
		return Degraded
	default:
		return Failing
	}
}

// StatusDot is a coloured dot for online/offline
func StatusDot(online bool) string {
	if online {
		return Healthy.Render("●")
	}
	return Failing.Render("●")
}
