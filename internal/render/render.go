// Package render turns a FilteredView and its Selection into presentable
// output: a chart model, a caption and an optional table.
//
// Render is a pure function. Rasterising the chart (SVG, PNG) and writing the
// table (text, markdown, csv, json) are separate steps so every front end can
// pick its own medium.
package render

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/gapview/internal/filter"
	"github.com/leapstack-labs/gapview/pkg/core"
)

// View is everything a front end displays for one selection.
type View struct {
	Chart   Chart  `json:"chart"`
	Caption string `json:"caption"`
	// Table is nil unless the selection asks for it.
	Table *Table `json:"table,omitempty"`
}

// Render filters obs by sel and builds the View.
func Render(obs []core.Observation, sel core.Selection) View {
	return Build(filter.Apply(obs, sel), sel)
}

// Build builds the View for an already filtered view.
func Build(view core.FilteredView, sel core.Selection) View {
	out := View{
		Chart:   NewChart(view, sel),
		Caption: Caption(sel),
	}
	if sel.ShowTable {
		out.Table = NewTable(view)
	}
	return out
}

// Title is the chart title for sel.
func Title(sel core.Selection) string {
	return fmt.Sprintf("%s for countries in %s", sel.Metric.Label(), sel.Continent)
}

// Caption describes sel in one sentence: metric, year range, continent and
// the selected countries.
func Caption(sel core.Selection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This plot shows the %s", sel.Metric.Label())
	if sel.Years != (core.YearRange{}) {
		fmt.Fprintf(&b, " from %d to %d", sel.Years.Min, sel.Years.Max)
	}
	fmt.Fprintf(&b, " for countries in %s: ", sel.Continent)
	if len(sel.Countries) == 0 {
		b.WriteString("no countries selected.")
	} else {
		b.WriteString(strings.Join(sel.Countries, ", "))
		b.WriteString(".")
	}
	return b.String()
}
