package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#2563EB")
	colorMuted   = lipgloss.Color("#6B7280")
	colorDanger  = lipgloss.Color("#DC2626")
	colorSuccess = lipgloss.Color("#16A34A")
	colorWarning = lipgloss.Color("#D97706")
)

// styles groups the lipgloss styles used by the console.
type styles struct {
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Title     lipgloss.Style
	Muted     lipgloss.Style
	Dialog    lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Status    lipgloss.Style
}

func defaultStyles() styles {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		MarginTop(1)
	return styles{
		Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted),
		ActiveTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(colorPrimary),
		Title:     lipgloss.NewStyle().Bold(true).MarginTop(1),
		Muted:     lipgloss.NewStyle().Foreground(colorMuted),
		Dialog:    box.BorderForeground(colorDanger),
		Success:   box.BorderForeground(colorSuccess),
		Error:     box.BorderForeground(colorDanger),
		Warning:   lipgloss.NewStyle().Foreground(colorWarning),
		Status:    lipgloss.NewStyle().Foreground(colorDanger).MarginTop(1),
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorMuted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorPrimary).
		Bold(false)
	return s
}
