package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gapview/internal/dataset/datasettest"
	"github.com/leapstack-labs/gapview/pkg/core"
)

func ptr(n int) *int { return &n }

func TestDefault(t *testing.T) {
	ds := datasettest.Sample(t)

	state := Default(ds)

	assert.Equal(t, core.Selection{
		Continent: "Europe",
		Metric:    core.MetricPopulation,
		Countries: []string{"France", "Germany", "Spain"},
		Years:     core.YearRange{Min: 1952, Max: 2007},
	}, state.Selection)

	assert.Equal(t, []string{"Europe", "Asia"}, state.Controls.Continents)
	assert.Equal(t, []MetricOption{
		{Metric: core.MetricPopulation, Label: "Population"},
		{Metric: core.MetricGDPPerCapita, Label: "GDP Per Capita"},
		{Metric: core.MetricLifeExpectancy, Label: "Average Life Expectancy"},
	}, state.Controls.Metrics)
	assert.Equal(t, []string{"France", "Germany", "Spain"}, state.Controls.Countries)
	assert.Equal(t, core.YearRange{Min: 1952, Max: 2007}, state.Controls.YearBounds)
	assert.True(t, state.Controls.HasData)
}

func TestResolve(t *testing.T) {
	ds := datasettest.Sample(t)

	tests := []struct {
		name      string
		req       Request
		continent string
		metric    core.Metric
		countries []string
		years     core.YearRange
	}{
		{
			name:      "scenario",
			req:       Request{Continent: "Europe", Metric: "pop", Countries: []string{"France", "Germany"}, YearMin: ptr(2000), YearMax: ptr(2000)},
			continent: "Europe",
			metric:    core.MetricPopulation,
			countries: []string{"France", "Germany"},
			years:     core.YearRange{Min: 2000, Max: 2000},
		},
		{
			name:      "unknown continent falls back",
			req:       Request{Continent: "Atlantis", Metric: "lifeExp"},
			continent: "Europe",
			metric:    core.MetricLifeExpectancy,
			countries: []string{"France"},
			years:     core.YearRange{Min: 1952, Max: 2007},
		},
		{
			name:      "unknown metric falls back",
			req:       Request{Continent: "Asia", Metric: "gdp"},
			continent: "Asia",
			metric:    core.MetricPopulation,
			countries: []string{"Japan", "China"},
			years:     core.YearRange{Min: 1952, Max: 2007},
		},
		{
			name:      "countries intersected with options in request order",
			req:       Request{Continent: "Europe", Metric: "gdpPercap", Countries: []string{"Spain", "Germany", "Japan", "France", "Germany"}},
			continent: "Europe",
			metric:    core.MetricGDPPerCapita,
			countries: []string{"Germany", "France"},
			years:     core.YearRange{Min: 1972, Max: 2002},
		},
		{
			name:      "explicit empty countries stay empty",
			req:       Request{Continent: "Europe", Metric: "pop", Countries: []string{}},
			continent: "Europe",
			metric:    core.MetricPopulation,
			countries: []string{},
			years:     core.YearRange{Min: 1952, Max: 2007},
		},
		{
			name:      "years clamped to metric bounds",
			req:       Request{Continent: "Europe", Metric: "gdpPercap", YearMin: ptr(1900), YearMax: ptr(2050)},
			continent: "Europe",
			metric:    core.MetricGDPPerCapita,
			countries: []string{"France", "Germany"},
			years:     core.YearRange{Min: 1972, Max: 2002},
		},
		{
			name:      "reversed years swapped",
			req:       Request{Continent: "Europe", Metric: "pop", YearMin: ptr(2007), YearMax: ptr(1960)},
			continent: "Europe",
			metric:    core.MetricPopulation,
			countries: []string{"France", "Germany", "Spain"},
			years:     core.YearRange{Min: 1960, Max: 2007},
		},
		{
			name:      "only max given",
			req:       Request{Continent: "Asia", Metric: "pop", YearMax: ptr(1980)},
			continent: "Asia",
			metric:    core.MetricPopulation,
			countries: []string{"Japan", "China"},
			years:     core.YearRange{Min: 1952, Max: 1980},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := Resolve(ds, tt.req)
			sel := state.Selection

			assert.Equal(t, tt.continent, sel.Continent)
			assert.Equal(t, tt.metric, sel.Metric)
			assert.Equal(t, tt.countries, sel.Countries)
			assert.Equal(t, tt.years, sel.Years)
			assert.True(t, sel.Years.Valid())

			for _, c := range sel.Countries {
				assert.Contains(t, state.Controls.Countries, c)
			}
			assert.GreaterOrEqual(t, sel.Years.Min, state.Controls.YearBounds.Min)
			assert.LessOrEqual(t, sel.Years.Max, state.Controls.YearBounds.Max)
		})
	}
}

func TestResolve_NoDataForCombination(t *testing.T) {
	ds := datasettest.New(t,
		datasettest.Row("France", "Europe", core.MetricPopulation, 2000, 1),
		datasettest.Row("Japan", "Asia", core.MetricLifeExpectancy, 2000, 80),
	)

	state := Resolve(ds, Request{Continent: "Asia", Metric: "pop"})

	assert.Equal(t, "Asia", state.Selection.Continent)
	assert.Equal(t, core.MetricPopulation, state.Selection.Metric)
	assert.Empty(t, state.Selection.Countries)
	assert.False(t, state.Controls.HasData)
	assert.Empty(t, state.Controls.Countries)
}

func TestResolve_MetricSwitchRecomputesOptions(t *testing.T) {
	ds := datasettest.Sample(t)

	pop := Resolve(ds, Request{Continent: "Europe", Metric: "pop"})
	gdp := Resolve(ds, Request{Continent: "Europe", Metric: "gdpPercap"})

	assert.Equal(t, []string{"France", "Germany", "Spain"}, pop.Controls.Countries)
	assert.Equal(t, []string{"France", "Germany"}, gdp.Controls.Countries)
	assert.Equal(t, core.YearRange{Min: 1952, Max: 2007}, pop.Controls.YearBounds)
	assert.Equal(t, core.YearRange{Min: 1972, Max: 2002}, gdp.Controls.YearBounds)
}

func TestTransition(t *testing.T) {
	prev := core.Selection{
		Continent: "Europe",
		Metric:    core.MetricPopulation,
		Countries: []string{"France"},
		Years:     core.YearRange{Min: 1990, Max: 2000},
	}

	t.Run("same continent and metric keeps input", func(t *testing.T) {
		req := Request{Continent: "Europe", Metric: "pop", Countries: []string{"Spain"}, YearMin: ptr(1960), ShowTable: true}
		assert.Equal(t, req, Transition(prev, req))
	})

	t.Run("metric change resets dependent controls", func(t *testing.T) {
		req := Request{Continent: "Europe", Metric: "gdpPercap", Countries: []string{"Spain"}, YearMin: ptr(1960), YearMax: ptr(1970), ShowTable: true}
		got := Transition(prev, req)
		assert.Nil(t, got.Countries)
		assert.Nil(t, got.YearMin)
		assert.Nil(t, got.YearMax)
		assert.True(t, got.ShowTable)
		assert.Equal(t, "gdpPercap", got.Metric)
	})

	t.Run("continent change resets dependent controls", func(t *testing.T) {
		got := Transition(prev, Request{Continent: "Asia", Metric: "pop", Countries: []string{"France"}})
		assert.Nil(t, got.Countries)
	})

	t.Run("switching metric yields the new options", func(t *testing.T) {
		ds := datasettest.Sample(t)
		before := Resolve(ds, Request{Continent: "Europe", Metric: "pop", Countries: []string{"Spain"}}).Selection

		after := Resolve(ds, Transition(before, Request{Continent: "Europe", Metric: "gdpPercap", Countries: before.Countries}))
		assert.Equal(t, []string{"France", "Germany"}, after.Selection.Countries)
		assert.Equal(t, core.YearRange{Min: 1972, Max: 2002}, after.Selection.Years)
	})
}

func TestFromSelection_RoundTrip(t *testing.T) {
	ds := datasettest.Sample(t)

	want := Resolve(ds, Request{Continent: "Asia", Metric: "pop", Countries: []string{"China"}, YearMin: ptr(1960), ShowTable: true}).Selection
	got := Resolve(ds, FromSelection(want)).Selection

	assert.Equal(t, want, got)
}

func TestValidate(t *testing.T) {
	ds := datasettest.Sample(t)

	tests := []struct {
		name      string
		req       Request
		errSubstr string
	}{
		{name: "empty request", req: Request{}},
		{name: "valid", req: Request{Continent: "Europe", Metric: "gdpPercap", Countries: []string{"France"}}},
		{name: "unknown metric", req: Request{Metric: "gdp"}, errSubstr: "unknown metric"},
		{name: "unknown continent", req: Request{Continent: "Oceania"}, errSubstr: `unknown continent "Oceania"`},
		{name: "country without data", req: Request{Continent: "Europe", Metric: "gdpPercap", Countries: []string{"Spain"}}, errSubstr: `country "Spain" has no gdpPercap data in Europe`},
		{name: "years within bounds", req: Request{Continent: "Europe", Metric: "gdpPercap", YearMin: ptr(1972), YearMax: ptr(2002)}},
		{name: "reversed years", req: Request{YearMin: ptr(2000), YearMax: ptr(1990)}, errSubstr: "year range 2000-1990 is reversed"},
		{name: "year after bounds", req: Request{Continent: "Europe", Metric: "pop", YearMin: ptr(3000), YearMax: ptr(3000)}, errSubstr: "year 3000 is outside 1952-2007 for pop in Europe"},
		{name: "year before metric bounds", req: Request{Continent: "Europe", Metric: "gdpPercap", YearMin: ptr(1952)}, errSubstr: "year 1952 is outside 1972-2002"},
		{name: "single year bounds", req: Request{Continent: "Asia", Metric: "lifeExp", YearMax: ptr(2000)}, errSubstr: "year 2000 is outside 2007-2007 for lifeExp in Asia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(ds, tt.req)
			if tt.errSubstr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}

	var unknown *core.UnknownMetricError
	assert.True(t, errors.As(Validate(ds, Request{Metric: "GDP"}), &unknown))
}
