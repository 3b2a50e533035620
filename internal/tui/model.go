// Package tui is the terminal front end: the dashboard's controls in a
// sidebar, one sparkline per selected country, the caption and the
// optional data table.
package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/gapview/internal/dataset"
	"github.com/leapstack-labs/gapview/internal/render"
	"github.com/leapstack-labs/gapview/internal/selection"
	"github.com/leapstack-labs/gapview/pkg/core"
)

type pane int

const (
	paneContinent pane = iota
	paneMetric
	paneCountries
	paneYears
	paneCount
)

const (
	edgeFrom = 0
	edgeTo   = 1
)

const (
	sidebarWidth = 30
	tableHeight  = 10
)

// Model implements tea.Model over one dataset snapshot.
type Model struct {
	ds     *dataset.Dataset
	logger *slog.Logger

	state selection.State
	view  render.View

	focus   pane
	cursors [paneCount]int

	keys   keyMap
	help   help.Model
	table  table.Model
	styles styles

	width  int
	height int
}

// New resolves req against ds and returns the initial model.
func New(ds *dataset.Dataset, req selection.Request, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Model{
		ds:     ds,
		logger: logger,
		keys:   defaultKeyMap(),
		help:   help.New(),
		styles: defaultStyles(),
		table: table.New(
			table.WithColumns([]table.Column{
				{Title: "Country", Width: 18},
				{Title: "Continent", Width: 10},
				{Title: "Metric", Width: 9},
				{Title: "Year", Width: 5},
				{Title: "Value", Width: 16},
			}),
			table.WithHeight(tableHeight),
		),
	}
	m.state = selection.Resolve(ds, req)
	m.refresh()
	return m
}

// Run starts the program on the terminal and blocks until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, m *Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}

// State returns the current resolved selection and controls.
func (m *Model) State() selection.State {
	return m.state
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Next):
		m.focus = (m.focus + 1) % paneCount
	case key.Matches(msg, m.keys.Prev):
		m.focus = (m.focus + paneCount - 1) % paneCount
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Select):
		m.choose()
	case key.Matches(msg, m.keys.Earlier):
		m.shiftYear(-1)
	case key.Matches(msg, m.keys.Later):
		m.shiftYear(1)
	case key.Matches(msg, m.keys.All):
		req := m.current()
		req.Countries = nil
		m.apply(req)
	case key.Matches(msg, m.keys.None):
		req := m.current()
		req.Countries = []string{}
		m.apply(req)
	case key.Matches(msg, m.keys.Table):
		req := m.current()
		req.ShowTable = !req.ShowTable
		m.apply(req)
	case key.Matches(msg, m.keys.Reset):
		m.focus = paneContinent
		m.apply(selection.Request{})
	}
	return m, nil
}

func (m *Model) current() selection.Request {
	return selection.FromSelection(m.state.Selection)
}

// apply moves to next, resetting countries and years when the continent
// or metric changed.
func (m *Model) apply(next selection.Request) {
	prev := m.state.Selection
	m.state = selection.Resolve(m.ds, selection.Transition(prev, next))
	m.logger.Debug("selection changed",
		"continent", m.state.Selection.Continent,
		"metric", m.state.Selection.Metric,
		"countries", len(m.state.Selection.Countries),
		"years", m.state.Selection.Years)
	m.refresh()
}

func (m *Model) refresh() {
	m.view = render.Render(m.ds.Observations(), m.state.Selection)

	var rows []table.Row
	if m.view.Table != nil {
		rows = make([]table.Row, m.view.Table.Len())
		for i := range rows {
			rows[i] = m.view.Table.Cells(i)
		}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)

	c := m.state.Controls
	for i, name := range c.Continents {
		if name == m.state.Selection.Continent {
			m.cursors[paneContinent] = i
		}
	}
	for i, opt := range c.Metrics {
		if opt.Metric == m.state.Selection.Metric {
			m.cursors[paneMetric] = i
		}
	}
	m.cursors[paneCountries] = min(m.cursors[paneCountries], max(len(c.Countries)-1, 0))
}

func (m *Model) paneLen(p pane) int {
	c := m.state.Controls
	switch p {
	case paneContinent:
		return len(c.Continents)
	case paneMetric:
		return len(c.Metrics)
	case paneCountries:
		return len(c.Countries)
	default:
		return 2
	}
}

func (m *Model) move(delta int) {
	n := m.paneLen(m.focus)
	if n == 0 {
		return
	}
	m.cursors[m.focus] = min(max(m.cursors[m.focus]+delta, 0), n-1)
}

func (m *Model) choose() {
	c := m.state.Controls
	cur := m.cursors[m.focus]
	req := m.current()

	switch m.focus {
	case paneContinent:
		if cur >= len(c.Continents) {
			return
		}
		req.Continent = c.Continents[cur]
	case paneMetric:
		if cur >= len(c.Metrics) {
			return
		}
		req.Metric = c.Metrics[cur].Metric.String()
	case paneCountries:
		if cur >= len(c.Countries) {
			return
		}
		req.Countries = toggle(c.Countries, m.state.Selection, c.Countries[cur])
	case paneYears:
		return
	}
	m.apply(req)
}

// toggle flips target in the selected subset and returns it in option order.
func toggle(options []string, sel core.Selection, target string) []string {
	out := make([]string, 0, len(options))
	for _, c := range options {
		if sel.HasCountry(c) != (c == target) {
			out = append(out, c)
		}
	}
	return out
}

// shiftYear moves the year edge under the years cursor by delta. The edges
// never cross.
func (m *Model) shiftYear(delta int) {
	if !m.state.Controls.HasData {
		return
	}
	years := m.state.Selection.Years
	if m.cursors[paneYears] == edgeFrom {
		years.Min += delta
	} else {
		years.Max += delta
	}
	if years.Min > years.Max {
		return
	}
	req := m.current()
	req.YearMin, req.YearMax = &years.Min, &years.Max
	m.apply(req)
}
