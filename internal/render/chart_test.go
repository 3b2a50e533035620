package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gapview/internal/dataset/datasettest"
	"github.com/leapstack-labs/gapview/pkg/core"
)

func TestChart_SVG(t *testing.T) {
	obs := datasettest.SampleObservations()
	sel := core.Selection{
		Continent: "Europe",
		Metric:    core.MetricPopulation,
		Countries: []string{"France", "Germany", "Spain"},
		Years:     core.YearRange{Min: 1952, Max: 2007},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(obs, sel).Chart.SVG(&buf, Size{}))

	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "Population for countries in Europe")
	assert.Contains(t, out, "Spain")
	assert.Contains(t, out, ">1960<")
}

func TestChart_SVGEdgeCases(t *testing.T) {
	tests := []struct {
		name  string
		chart Chart
	}{
		{
			name:  "no series",
			chart: Chart{Title: "Population for countries in Europe", XLabel: "year", YLabel: "Population"},
		},
		{
			name: "single point",
			chart: Chart{Title: "t", Series: []Series{
				{Country: "France", Points: []Point{{Year: 2000, Value: 60000000}}},
			}},
		},
		{
			name: "flat line at zero",
			chart: Chart{Title: "t", Series: []Series{
				{Country: "France", Points: []Point{{Year: 2000, Value: 0}, {Year: 2005, Value: 0}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.chart.SVG(&buf, Size{Width: 640, Height: 360}))
			assert.Contains(t, buf.String(), "<svg")
		})
	}
}

func TestChart_SVGEscapesNames(t *testing.T) {
	c := Chart{Title: "t", Series: []Series{
		{Country: "Trinidad & Tobago", Points: []Point{{Year: 2000, Value: 1}, {Year: 2001, Value: 2}}},
	}}

	var buf bytes.Buffer
	require.NoError(t, c.SVG(&buf, Size{}))
	assert.Contains(t, buf.String(), "Trinidad &amp; Tobago")
	assert.NotContains(t, buf.String(), "Trinidad & Tobago")
}

func TestChart_PNG(t *testing.T) {
	obs, sel := scenario()

	var buf bytes.Buffer
	require.NoError(t, Render(obs, sel).Chart.PNG(&buf, Size{Width: 320, Height: 200}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestYearTicks(t *testing.T) {
	tests := []struct {
		name   string
		r      core.YearRange
		first  float64
		last   float64
		labels int
	}{
		{name: "gapminder span", r: core.YearRange{Min: 1952, Max: 2007}, first: 1950, last: 2010, labels: 13},
		{name: "short span", r: core.YearRange{Min: 1999, Max: 2001}, first: 1999, last: 2001, labels: 3},
		{name: "decade", r: core.YearRange{Min: 1990, Max: 2000}, first: 1990, last: 2000, labels: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticks := yearTicks(tt.r)
			require.Len(t, ticks, tt.labels)
			assert.InDelta(t, tt.first, ticks[0].Value, 0)
			assert.InDelta(t, tt.last, ticks[len(ticks)-1].Value, 0)
		})
	}
}

func TestFormatValueTick(t *testing.T) {
	assert.Equal(t, "1.31B", formatValueTick(1318683096.0))
	assert.Equal(t, "82.4M", formatValueTick(82400996.0))
	assert.Equal(t, "30.4k", formatValueTick(30470.0167))
	assert.Equal(t, "80.65", formatValueTick(80.657))
	assert.Equal(t, "0", formatValueTick(0.0))
}
