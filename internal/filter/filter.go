// Package filter implements the observation filter pipeline.
//
// Every function here is pure: inputs are never modified and the output
// preserves the relative order of the input rows.
package filter

import (
	"github.com/leapstack-labs/gapview/pkg/core"
)

// Predicate decides whether an observation is kept.
type Predicate func(core.Observation) bool

// Continent keeps rows whose continent equals c.
func Continent(c string) Predicate {
	return func(o core.Observation) bool { return o.Continent == c }
}

// Metric keeps rows whose metric equals m.
func Metric(m core.Metric) Predicate {
	return func(o core.Observation) bool { return o.Metric == m }
}

// Countries keeps rows whose country is a member of countries.
// An empty list keeps nothing.
func Countries(countries []string) Predicate {
	set := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		set[c] = struct{}{}
	}
	return func(o core.Observation) bool {
		_, ok := set[o.Country]
		return ok
	}
}

// Years keeps rows with r.Min <= year <= r.Max. A reversed range keeps nothing.
func Years(r core.YearRange) Predicate {
	return func(o core.Observation) bool { return r.Contains(o.Year) }
}

// All combines predicates with logical AND.
func All(preds ...Predicate) Predicate {
	return func(o core.Observation) bool {
		for _, p := range preds {
			if !p(o) {
				return false
			}
		}
		return true
	}
}

// Where returns the rows satisfying pred, in input order.
func Where(obs []core.Observation, pred Predicate) []core.Observation {
	var out []core.Observation
	for _, o := range obs {
		if pred(o) {
			out = append(out, o)
		}
	}
	return out
}

// SelectionPredicate is the conjunction of the four selection predicates.
func SelectionPredicate(sel core.Selection) Predicate {
	return All(
		Continent(sel.Continent),
		Metric(sel.Metric),
		Countries(sel.Countries),
		Years(sel.Years),
	)
}

// Apply returns the FilteredView for sel over the full observation set.
func Apply(obs []core.Observation, sel core.Selection) core.FilteredView {
	return core.FilteredView{Rows: Where(obs, SelectionPredicate(sel))}
}

// Options describes the choices available once continent and metric are fixed.
type Options struct {
	// Countries are the distinct countries under continent+metric, in first appearance order.
	Countries []string
	// Years spans the min and max year under continent+metric.
	// It is meaningful only when HasData is true.
	Years core.YearRange
	// HasData reports whether any row matched continent+metric.
	HasData bool
}

// OptionsFor computes country options and year bounds from the rows matching
// continent and metric only, never from the global table.
func OptionsFor(obs []core.Observation, continent string, metric core.Metric) Options {
	var opts Options
	seen := make(map[string]struct{})
	pred := All(Continent(continent), Metric(metric))

	for _, o := range obs {
		if !pred(o) {
			continue
		}
		if !opts.HasData {
			opts.Years = core.YearRange{Min: o.Year, Max: o.Year}
			opts.HasData = true
		} else {
			opts.Years.Min = min(opts.Years.Min, o.Year)
			opts.Years.Max = max(opts.Years.Max, o.Year)
		}
		if _, ok := seen[o.Country]; !ok {
			seen[o.Country] = struct{}{}
			opts.Countries = append(opts.Countries, o.Country)
		}
	}
	return opts
}

// Continents returns the distinct continents in first appearance order.
func Continents(obs []core.Observation) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range obs {
		if _, ok := seen[o.Continent]; ok {
			continue
		}
		seen[o.Continent] = struct{}{}
		out = append(out, o.Continent)
	}
	return out
}

// Metrics returns the distinct metrics in first appearance order.
func Metrics(obs []core.Observation) []core.Metric {
	seen := make(map[core.Metric]struct{})
	var out []core.Metric
	for _, o := range obs {
		if _, ok := seen[o.Metric]; ok {
			continue
		}
		seen[o.Metric] = struct{}{}
		out = append(out, o.Metric)
	}
	return out
}
