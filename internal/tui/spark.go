package tui

import (
	"math"
	"strings"

	"github.com/leapstack-labs/gapview/internal/render"
)

var sparkChars = []rune("▁▂▃▄▅▆▇█")

// valueRange returns the smallest and largest value across series.
func valueRange(series []render.Series) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, p := range s.Points {
			lo = math.Min(lo, p.Value)
			hi = math.Max(hi, p.Value)
		}
	}
	return lo, hi
}

// sparkline draws one rune per point, scaled to [lo, hi] so lines of
// different countries compare.
func sparkline(points []render.Point, lo, hi float64) string {
	var b strings.Builder
	top := len(sparkChars) - 1
	for _, p := range points {
		i := top / 2
		if hi > lo {
			i = int(math.Round((p.Value - lo) / (hi - lo) * float64(top)))
		}
		b.WriteRune(sparkChars[min(max(i, 0), top)])
	}
	return b.String()
}
