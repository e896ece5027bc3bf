package schedule

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	day       lipgloss.Style
	slot      lipgloss.Style
	time      lipgloss.Style
	therapist lipgloss.Style
	open      lipgloss.Style
	taken     lipgloss.Style
	mine      lipgloss.Style
	pending   lipgloss.Style
	warning   lipgloss.Style
	empty     lipgloss.Style
	section   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		day:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		slot:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		time:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		therapist: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		open:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		taken:     lipgloss.NewStyle().Faint(true),
		mine:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		pending:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		empty:     lipgloss.NewStyle().Faint(true),
		section:   lipgloss.NewStyle().MarginTop(1),
	}
}
