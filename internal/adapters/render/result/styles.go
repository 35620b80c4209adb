package result

import "github.com/charmbracelet/lipgloss"

type styles struct {
	feedback   lipgloss.Style
	header     lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	stepOK     lipgloss.Style
	stepFail   lipgloss.Style
	stepMaybe  lipgloss.Style
	tag        lipgloss.Style
	modelName  lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		feedback:   lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		stepOK:     lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		stepFail:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		stepMaybe:  lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
		tag:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		modelName:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
