// Package components renders the dashboard HTML fragments.
//
// Fragments are html/template definitions wrapped as templ components, so
// handlers can send them with datastar's PatchElementTempl. Every fragment
// has a stable element id that the browser morphs in place.
package components

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/gapview/internal/render"
	"github.com/leapstack-labs/gapview/internal/selection"
	"github.com/leapstack-labs/gapview/internal/ui/resources"
)

// DatastarURL is the client bundle loaded by every page.
const DatastarURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0-RC.6/bundles/datastar.js"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("components").
	Funcs(template.FuncMap{"static": resources.StaticPath}).
	ParseFS(templateFS, "templates/*.html"))

// ChartSize is the size of the inline dashboard chart.
var ChartSize = render.Size{Width: 900, Height: 520}

// Dashboard is everything the dashboard fragments display.
type Dashboard struct {
	State    selection.State
	View     render.View
	ChartSVG template.HTML
	Source   string
	Rows     int
	Version  uint64
	// Refresh makes the status fragment ask the browser to re-post its
	// selection as soon as it is patched in.
	Refresh bool
}

// NewDashboard renders the chart for view and assembles the fragment data.
func NewDashboard(state selection.State, view render.View, source string, rows int, version uint64) (Dashboard, error) {
	var svg bytes.Buffer
	if err := view.Chart.SVG(&svg, ChartSize); err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		State:    state,
		View:     view,
		//nolint:gosec // produced by go-chart with escaped text
		ChartSVG: template.HTML(svg.String()),
		Source:   source,
		Rows:     rows,
		Version:  version,
	}, nil
}

// Signals is the client-side signal set mirroring a selection.
type Signals struct {
	Continent string   `json:"continent"`
	Metric    string   `json:"metric"`
	Countries []string `json:"countries"`
	YearMin   int      `json:"yearMin"`
	YearMax   int      `json:"yearMax"`
	ShowTable bool     `json:"showTable"`
}

// SignalsFor converts a resolved state into client signals.
func SignalsFor(state selection.State) Signals {
	sel := state.Selection
	countries := sel.Countries
	if countries == nil {
		countries = []string{}
	}
	return Signals{
		Continent: sel.Continent,
		Metric:    sel.Metric.String(),
		Countries: countries,
		YearMin:   sel.Years.Min,
		YearMax:   sel.Years.Max,
		ShowTable: sel.ShowTable,
	}
}

type pageData struct {
	Title       string
	IsDev       bool
	DatastarURL string
	Signals     string
	Dashboard   Dashboard
}

// Page renders the full dashboard document.
func Page(title string, isDev bool, d Dashboard) templ.Component {
	signals, _ := json.Marshal(SignalsFor(d.State))
	return templ.FromGoHTML(templates.Lookup("page"), pageData{
		Title:       title,
		IsDev:       isDev,
		DatastarURL: DatastarURL,
		Signals:     string(signals),
		Dashboard:   d,
	})
}

// Controls renders the sidebar form (#controls).
func Controls(state selection.State) templ.Component {
	return templ.FromGoHTML(templates.Lookup("controls"), state)
}

// Output renders chart, caption and table (#output).
func Output(d Dashboard) templ.Component {
	return templ.FromGoHTML(templates.Lookup("output"), d)
}

// Status renders the dataset footer (#status).
func Status(d Dashboard) templ.Component {
	return templ.FromGoHTML(templates.Lookup("status"), d)
}
