package render

import (
	"fmt"
	"html"
	"io"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/leapstack-labs/gapview/pkg/core"
)

// Point is one (year, value) sample of a series.
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Series is the line for one country.
type Series struct {
	Country string  `json:"country"`
	Points  []Point `json:"points"`
}

// Chart is a line chart model: x is year, y is value, one series per country.
type Chart struct {
	Title  string   `json:"title"`
	XLabel string   `json:"xLabel"`
	YLabel string   `json:"yLabel"`
	Series []Series `json:"series"`
}

// Size is the raster size of a chart in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is used when a zero Size is passed.
var DefaultSize = Size{Width: 960, Height: 540}

// NewChart builds the chart model for view. Series follow the first
// appearance order of countries in the view.
func NewChart(view core.FilteredView, sel core.Selection) Chart {
	c := Chart{
		Title:  Title(sel),
		XLabel: core.ColumnYear,
		YLabel: sel.Metric.Label(),
	}

	index := make(map[string]int)
	for _, o := range view.Rows {
		i, ok := index[o.Country]
		if !ok {
			i = len(c.Series)
			index[o.Country] = i
			c.Series = append(c.Series, Series{Country: o.Country})
		}
		c.Series[i].Points = append(c.Series[i].Points, Point{Year: o.Year, Value: o.Value})
	}
	return c
}

// SVG writes the chart as an SVG document.
func (c Chart) SVG(w io.Writer, size Size) error {
	return c.chart(size, html.EscapeString).Render(chart.SVG, w)
}

// PNG writes the chart as a PNG image.
func (c Chart) PNG(w io.Writer, size Size) error {
	return c.chart(size, func(s string) string { return s }).Render(chart.PNG, w)
}

// chart converts the model to a go-chart Chart. The SVG renderer writes text
// verbatim, so names pass through escape first.
func (c Chart) chart(size Size, escape func(string) string) chart.Chart {
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}

	years, values := c.bounds()

	ch := chart.Chart{
		Title:      escape(c.Title),
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  escape(c.XLabel),
			Ticks: yearTicks(years),
		},
		YAxis: chart.YAxis{
			Name:           escape(c.YLabel),
			Range:          &chart.ContinuousRange{Min: values.Min, Max: values.Max},
			ValueFormatter: formatValueTick,
		},
	}

	for _, s := range c.Series {
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for i, p := range s.Points {
			xs[i] = float64(p.Year)
			ys[i] = p.Value
		}
		ch.Series = append(ch.Series, chart.ContinuousSeries{
			Name:    escape(s.Country),
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeWidth: 2, DotWidth: 2},
		})
	}

	if len(ch.Series) == 0 {
		// go-chart needs one visible series to draw the frame.
		ch.Series = []chart.Series{chart.ContinuousSeries{
			XValues: []float64{float64(years.Min), float64(years.Max)},
			YValues: []float64{values.Min, values.Min},
			Style:   chart.Style{StrokeColor: drawing.ColorTransparent, DotColor: drawing.ColorTransparent},
		}}
	} else {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch
}

// floatRange is an inclusive value interval.
type floatRange struct{ Min, Max float64 }

// bounds returns the year and value extents, padded so neither is empty.
func (c Chart) bounds() (core.YearRange, floatRange) {
	years := core.YearRange{Min: math.MaxInt, Max: math.MinInt}
	values := floatRange{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, s := range c.Series {
		for _, p := range s.Points {
			years.Min = min(years.Min, p.Year)
			years.Max = max(years.Max, p.Year)
			values.Min = math.Min(values.Min, p.Value)
			values.Max = math.Max(values.Max, p.Value)
		}
	}

	if years.Min > years.Max {
		years = core.YearRange{Min: 0, Max: 1}
		values = floatRange{Min: 0, Max: 1}
	}
	if years.Min == years.Max {
		years.Min--
		years.Max++
	}
	if values.Min == values.Max {
		pad := math.Max(math.Abs(values.Min)*0.1, 1)
		values.Min -= pad
		values.Max += pad
	}
	return years, values
}

var yearSteps = []int{1, 2, 5, 10, 20, 25, 50, 100}

// yearTicks labels whole years only, at most a dozen of them.
func yearTicks(r core.YearRange) []chart.Tick {
	step := yearSteps[len(yearSteps)-1]
	for _, s := range yearSteps {
		if (r.Max-r.Min)/s <= 12 {
			step = s
			break
		}
	}

	start := r.Min - mod(r.Min, step)
	var ticks []chart.Tick
	for y := start; y < r.Max+step; y += step {
		ticks = append(ticks, chart.Tick{Value: float64(y), Label: fmt.Sprintf("%d", y)})
	}
	return ticks
}

func mod(a, b int) int {
	return ((a % b) + b) % b
}

// formatValueTick shortens large magnitudes (1.31B, 82.4M, 30.4k), truncating
// rather than rounding.
func formatValueTick(v any) string {
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprintf("%v", v)
	}

	abs := math.Abs(f)
	switch {
	case abs >= 1e9:
		return humanize.FtoaWithDigits(f/1e9, 2) + "B"
	case abs >= 1e6:
		return humanize.FtoaWithDigits(f/1e6, 2) + "M"
	case abs >= 1e4:
		return humanize.FtoaWithDigits(f/1e3, 1) + "k"
	default:
		return humanize.FtoaWithDigits(f, 2)
	}
}
