package chat

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	user       lipgloss.Style
	assistant  lipgloss.Style
	welcome    lipgloss.Style
	errorText  lipgloss.Style
	notice     lipgloss.Style
	empty      lipgloss.Style
	factKey    lipgloss.Style
	factValue  lipgloss.Style
	limitKey   lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
	spinner    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		user:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		assistant:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		welcome:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		errorText:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		notice:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		empty:      lipgloss.NewStyle().Faint(true),
		factKey:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		factValue:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		limitKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		spinner:    lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
	}
}
