// Package selection turns raw user input into a valid core.Selection.
//
// Every control offered to the user is derived from the loaded dataset, so
// Resolve never fails: out-of-range input is clamped or replaced with the
// first valid choice. Validate is the strict variant used by the CLI, where
// a typo should be reported rather than silently corrected.
package selection

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/gapview/internal/dataset"
	"github.com/leapstack-labs/gapview/internal/filter"
	"github.com/leapstack-labs/gapview/pkg/core"
)

// Request is unvalidated user input.
type Request struct {
	Continent string `json:"continent"`
	Metric    string `json:"metric"`
	// Countries nil means every available country. An empty, non-nil
	// slice means none.
	Countries []string `json:"countries"`
	YearMin   *int     `json:"yearMin,omitempty"`
	YearMax   *int     `json:"yearMax,omitempty"`
	ShowTable bool     `json:"showTable"`
}

// MetricOption is one entry of the metric control.
type MetricOption struct {
	Metric core.Metric `json:"metric"`
	Label  string      `json:"label"`
}

// Controls holds the choices a front end should offer for a selection.
type Controls struct {
	Continents []string       `json:"continents"`
	Metrics    []MetricOption `json:"metrics"`
	Countries  []string       `json:"countries"`
	YearBounds core.YearRange `json:"yearBounds"`
	// HasData is false when the chosen continent has no rows for the metric.
	HasData bool `json:"hasData"`
}

// State is a resolved selection together with its controls.
type State struct {
	Selection core.Selection `json:"selection"`
	Controls  Controls       `json:"controls"`
}

// Default resolves the empty request: first continent, first metric, all
// countries, the full year span, no table.
func Default(ds *dataset.Dataset) State {
	return Resolve(ds, Request{})
}

// Resolve normalises req against ds.
func Resolve(ds *dataset.Dataset, req Request) State {
	continents := ds.Continents()
	metrics := ds.Metrics()

	continent := continents[0]
	if ds.HasContinent(req.Continent) {
		continent = req.Continent
	}

	metric := metrics[0]
	if m, err := core.ParseMetric(req.Metric); err == nil && ds.HasMetric(m) {
		metric = m
	}

	opts := filter.OptionsFor(ds.Observations(), continent, metric)

	return State{
		Selection: core.Selection{
			Continent: continent,
			Metric:    metric,
			Countries: pickCountries(req.Countries, opts.Countries),
			Years:     pickYears(req.YearMin, req.YearMax, opts),
			ShowTable: req.ShowTable,
		},
		Controls: Controls{
			Continents: continents,
			Metrics:    metricOptions(metrics),
			Countries:  opts.Countries,
			YearBounds: opts.Years,
			HasData:    opts.HasData,
		},
	}
}

// pickCountries keeps the requested countries that are valid options, in
// request order and without duplicates.
func pickCountries(requested, options []string) []string {
	if requested == nil {
		return slices.Clone(options)
	}
	out := make([]string, 0, len(requested))
	for _, c := range requested {
		if slices.Contains(options, c) && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func pickYears(lo, hi *int, opts filter.Options) core.YearRange {
	if !opts.HasData {
		return core.YearRange{}
	}
	r := opts.Years
	if lo != nil {
		r.Min = clamp(*lo, opts.Years)
	}
	if hi != nil {
		r.Max = clamp(*hi, opts.Years)
	}
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

func clamp(year int, bounds core.YearRange) int {
	return min(max(year, bounds.Min), bounds.Max)
}

func metricOptions(metrics []core.Metric) []MetricOption {
	out := make([]MetricOption, len(metrics))
	for i, m := range metrics {
		out[i] = MetricOption{Metric: m, Label: m.Label()}
	}
	return out
}

// Transition applies the dependent-control reset: when continent or metric
// differ from prev, the country subset and year range go back to defaults.
func Transition(prev core.Selection, next Request) Request {
	if next.Continent == prev.Continent && next.Metric == string(prev.Metric) {
		return next
	}
	next.Countries = nil
	next.YearMin = nil
	next.YearMax = nil
	return next
}

// FromSelection converts a resolved selection back into a request, for
// re-resolving it against a different dataset snapshot.
func FromSelection(sel core.Selection) Request {
	lo, hi := sel.Years.Min, sel.Years.Max
	return Request{
		Continent: sel.Continent,
		Metric:    string(sel.Metric),
		Countries: slices.Clone(sel.Countries),
		YearMin:   &lo,
		YearMax:   &hi,
		ShowTable: sel.ShowTable,
	}
}

// Validate rejects input that Resolve would silently correct: unknown
// continents and metrics, countries without data, and years that are
// reversed or outside the bounds of the chosen continent and metric.
// Empty fields are allowed and mean "default".
func Validate(ds *dataset.Dataset, req Request) error {
	if req.Metric != "" {
		m, err := core.ParseMetric(req.Metric)
		if err != nil {
			return err
		}
		if !ds.HasMetric(m) {
			return fmt.Errorf("metric %q has no observations", m)
		}
	}
	if req.Continent != "" && !ds.HasContinent(req.Continent) {
		return fmt.Errorf("unknown continent %q (available: %v)", req.Continent, ds.Continents())
	}
	if req.YearMin != nil && req.YearMax != nil && *req.YearMin > *req.YearMax {
		return fmt.Errorf("year range %d-%d is reversed", *req.YearMin, *req.YearMax)
	}

	state := Resolve(ds, Request{Continent: req.Continent, Metric: req.Metric})
	if err := validateYears(state, req.YearMin, req.YearMax); err != nil {
		return err
	}
	for _, c := range req.Countries {
		if !slices.Contains(state.Controls.Countries, c) {
			return fmt.Errorf("country %q has no %s data in %s", c, state.Selection.Metric, state.Selection.Continent)
		}
	}
	return nil
}

func validateYears(state State, years ...*int) error {
	if !state.Controls.HasData {
		return nil
	}
	bounds := state.Controls.YearBounds
	for _, y := range years {
		if y != nil && (*y < bounds.Min || *y > bounds.Max) {
			return fmt.Errorf("year %d is outside %d-%d for %s in %s",
				*y, bounds.Min, bounds.Max, state.Selection.Metric, state.Selection.Continent)
		}
	}
	return nil
}
