// Package datasettest provides in-memory datasets for tests.
package datasettest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gapview/internal/dataset"
	"github.com/leapstack-labs/gapview/pkg/core"
)

// Row is a compact constructor for test observations.
func Row(country, continent string, metric core.Metric, year int, value float64) core.Observation {
	return core.Observation{Country: country, Continent: continent, Metric: metric, Year: year, Value: value}
}

// SampleObservations returns a small Gapminder-shaped table:
// Europe has France, Germany and Spain for pop but only France and Germany
// for gdpPercap, over a narrower year span; Asia has Japan and China.
func SampleObservations() []core.Observation {
	return []core.Observation{
		Row("France", "Europe", core.MetricPopulation, 1952, 42459667),
		Row("France", "Europe", core.MetricPopulation, 2000, 60000000),
		Row("France", "Europe", core.MetricPopulation, 2007, 61083916),
		Row("Germany", "Europe", core.MetricPopulation, 1952, 69145952),
		Row("Germany", "Europe", core.MetricPopulation, 2000, 82000000),
		Row("Germany", "Europe", core.MetricPopulation, 2007, 82400996),
		Row("Spain", "Europe", core.MetricPopulation, 1952, 28549870),
		Row("Spain", "Europe", core.MetricPopulation, 2007, 40448191),
		Row("France", "Europe", core.MetricGDPPerCapita, 1972, 16107.19171),
		Row("France", "Europe", core.MetricGDPPerCapita, 2002, 28926.03234),
		Row("Germany", "Europe", core.MetricGDPPerCapita, 1972, 18016.18027),
		Row("Germany", "Europe", core.MetricGDPPerCapita, 2002, 30035.80198),
		Row("France", "Europe", core.MetricLifeExpectancy, 1952, 67.41),
		Row("France", "Europe", core.MetricLifeExpectancy, 2007, 80.657),
		Row("Japan", "Asia", core.MetricPopulation, 1952, 86459025),
		Row("Japan", "Asia", core.MetricPopulation, 2007, 127467972),
		Row("China", "Asia", core.MetricPopulation, 1952, 556263527),
		Row("China", "Asia", core.MetricPopulation, 2007, 1318683096),
		Row("Japan", "Asia", core.MetricGDPPerCapita, 1952, 3216.956347),
		Row("Japan", "Asia", core.MetricGDPPerCapita, 2007, 31656.06806),
		Row("Japan", "Asia", core.MetricLifeExpectancy, 2007, 82.603),
	}
}

// Sample returns SampleObservations wrapped in a Dataset.
func Sample(t testing.TB) *dataset.Dataset {
	t.Helper()
	return New(t, SampleObservations()...)
}

// New wraps observations in a Dataset, failing the test on error.
func New(t testing.TB, observations ...core.Observation) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("test", observations)
	require.NoError(t, err)
	return ds
}
