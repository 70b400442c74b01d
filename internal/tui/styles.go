package tui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used across screens.
type Styles struct {
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Question  lipgloss.Style
	Source    lipgloss.Style
	Error     lipgloss.Style
	Notice    lipgloss.Style
	Selected  lipgloss.Style
	Processed lipgloss.Style
	Pending   lipgloss.Style
	Help      lipgloss.Style
	Prompt    lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Subtle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Question:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		Source:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Processed: lipgloss.NewStyle().Foreground(lipgloss.Color("76")),
		Pending:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
}
