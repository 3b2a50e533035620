package core

// Column names every dataset source must provide.
const (
	ColumnCountry   = "country"
	ColumnContinent = "continent"
	ColumnMetric    = "metric"
	ColumnYear      = "year"
	ColumnValue     = "value"
)

// RequiredColumns lists the columns in the order they are read.
var RequiredColumns = []string{ColumnCountry, ColumnContinent, ColumnMetric, ColumnYear, ColumnValue}

// Observation is one row of the tidy dataset.
// The tuple (Country, Metric, Year) is assumed unique within a continent.
type Observation struct {
	Country   string  `json:"country"`
	Continent string  `json:"continent"`
	Metric    Metric  `json:"metric"`
	Year      int     `json:"year"`
	Value     float64 `json:"value"`
}

// YearRange is an inclusive year interval.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether year lies within the range.
// A reversed range contains nothing.
func (r YearRange) Contains(year int) bool {
	return r.Min <= year && year <= r.Max
}

// Valid reports whether Min <= Max.
func (r YearRange) Valid() bool {
	return r.Min <= r.Max
}

// Selection is the user's current filter choices.
// It is owned by a single UI session and never persisted.
type Selection struct {
	Continent string    `json:"continent"`
	Metric    Metric    `json:"metric"`
	Countries []string  `json:"countries"`
	Years     YearRange `json:"years"`
	ShowTable bool      `json:"showTable"`
}

// HasCountry reports whether country is part of the selected subset.
func (s Selection) HasCountry(country string) bool {
	for _, c := range s.Countries {
		if c == country {
			return true
		}
	}
	return false
}

// FilteredView is the ordered subset of observations matching a Selection.
// It is derived, never mutated in place.
type FilteredView struct {
	Rows []Observation
}

// Len returns the number of rows in the view.
func (v FilteredView) Len() int {
	return len(v.Rows)
}

// IsEmpty reports whether the view has no rows. An empty view is a valid,
// displayable state.
func (v FilteredView) IsEmpty() bool {
	return len(v.Rows) == 0
}

// Countries returns the distinct countries in the view, in first appearance order.
func (v FilteredView) Countries() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range v.Rows {
		if _, ok := seen[o.Country]; ok {
			continue
		}
		seen[o.Country] = struct{}{}
		out = append(out, o.Country)
	}
	return out
}
