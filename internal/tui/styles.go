package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	caption    lipgloss.Style
	panel      lipgloss.Style
	panelFocus lipgloss.Style
	panelTitle lipgloss.Style
	cursor     lipgloss.Style
	chosen     lipgloss.Style
	dim        lipgloss.Style
	spark      lipgloss.Style
	warn       lipgloss.Style
}

func defaultStyles() styles {
	brand := lipgloss.AdaptiveColor{Light: "26", Dark: "81"}
	subtle := lipgloss.AdaptiveColor{Light: "245", Dark: "244"}
	border := lipgloss.AdaptiveColor{Light: "250", Dark: "238"}
	return styles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(brand),
		caption:    lipgloss.NewStyle().Italic(true),
		panel:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		panelFocus: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(brand).Padding(0, 1),
		panelTitle: lipgloss.NewStyle().Bold(true).Foreground(brand),
		cursor:     lipgloss.NewStyle().Bold(true).Foreground(brand),
		chosen:     lipgloss.NewStyle().Bold(true),
		dim:        lipgloss.NewStyle().Foreground(subtle),
		spark:      lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		warn:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	}
}
