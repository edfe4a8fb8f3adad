package main

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#6c7a89")
	warn   = lipgloss.Color("#FFC107")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle  = lipgloss.NewStyle().Foreground(muted).Width(12)
	valueStyle  = lipgloss.NewStyle().Bold(true)
	missStyle   = lipgloss.NewStyle().Foreground(warn).Italic(true)
	tagStyle    = lipgloss.NewStyle().Foreground(accent).Width(34)
	helpStyle   = lipgloss.NewStyle().Foreground(muted)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
)

// field renders one "label  value" line; ok=false shows the value as missing.
func field(label, value string, ok bool) string {
	if !ok {
		value = missStyle.Render("(none)")
	} else {
		value = valueStyle.Render(value)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}
