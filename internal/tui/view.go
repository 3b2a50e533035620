package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/gapview/internal/render"
)

const defaultWidth = 100

// View implements tea.Model.
func (m *Model) View() string {
	width := m.width
	if width == 0 {
		width = defaultWidth
	}
	mainWidth := max(width-sidebarWidth-2, 20)

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar(), m.main(mainWidth))
	return lipgloss.JoinVertical(lipgloss.Left, body, m.help.View(m.keys))
}

func (m *Model) sidebar() string {
	c := m.state.Controls
	sel := m.state.Selection

	continents := make([]string, len(c.Continents))
	for i, name := range c.Continents {
		continents[i] = m.item(paneContinent, i, name, name == sel.Continent)
	}
	metrics := make([]string, len(c.Metrics))
	for i, opt := range c.Metrics {
		metrics[i] = m.item(paneMetric, i, opt.Label, opt.Metric == sel.Metric)
	}
	countries := make([]string, len(c.Countries))
	for i, name := range c.Countries {
		mark := "[ ] "
		if sel.HasCountry(name) {
			mark = "[x] "
		}
		countries[i] = m.item(paneCountries, i, mark+name, false)
	}
	if len(countries) == 0 {
		countries = []string{m.styles.dim.Render("(none)")}
	}

	years := []string{m.styles.dim.Render("(no data)")}
	if c.HasData {
		years = []string{
			m.item(paneYears, edgeFrom, fmt.Sprintf("from %d", sel.Years.Min), false),
			m.item(paneYears, edgeTo, fmt.Sprintf("to   %d", sel.Years.Max), false),
			m.styles.dim.Render(fmt.Sprintf("%d-%d available", c.YearBounds.Min, c.YearBounds.Max)),
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.panel(paneContinent, "Continent", continents),
		m.panel(paneMetric, "Metric", metrics),
		m.panel(paneCountries, "Countries", countries),
		m.panel(paneYears, "Years", years),
	)
}

func (m *Model) panel(p pane, title string, lines []string) string {
	style := m.styles.panel
	if m.focus == p {
		style = m.styles.panelFocus
	}
	content := m.styles.panelTitle.Render(title) + "\n" + strings.Join(lines, "\n")
	return style.Width(sidebarWidth - 2).Render(content)
}

func (m *Model) item(p pane, i int, label string, chosen bool) string {
	prefix := "  "
	if m.focus == p && m.cursors[p] == i {
		prefix = m.styles.cursor.Render("> ")
	}
	if chosen {
		label = m.styles.chosen.Render(label)
	}
	return prefix + label
}

func (m *Model) main(width int) string {
	parts := []string{
		m.styles.title.Render(m.view.Chart.Title),
		m.styles.caption.Width(width).Render(m.view.Caption),
		"",
	}

	switch {
	case !m.state.Controls.HasData:
		parts = append(parts, m.styles.warn.Render(fmt.Sprintf("No %s data for %s.",
			m.state.Selection.Metric.Label(), m.state.Selection.Continent)))
	case len(m.view.Chart.Series) == 0:
		parts = append(parts, m.styles.dim.Render("No countries selected."))
	default:
		parts = append(parts, m.sparklines()...)
	}

	if m.view.Table != nil {
		parts = append(parts, "", m.table.View())
	}
	return lipgloss.NewStyle().PaddingLeft(2).Width(width).Render(strings.Join(parts, "\n"))
}

func (m *Model) sparklines() []string {
	series := m.view.Chart.Series
	lo, hi := valueRange(series)

	nameWidth := 0
	for _, s := range series {
		nameWidth = max(nameWidth, len(s.Country))
	}

	lines := make([]string, len(series))
	for i, s := range series {
		first, last := s.Points[0], s.Points[len(s.Points)-1]
		lines[i] = fmt.Sprintf("%-*s %s  %s (%d) → %s (%d)",
			nameWidth, s.Country,
			m.styles.spark.Render(sparkline(s.Points, lo, hi)),
			render.FormatNumber(first.Value), first.Year,
			render.FormatNumber(last.Value), last.Year)
	}
	return lines
}
