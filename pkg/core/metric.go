package core

// Metric identifies one of the measured quantities in the dataset.
// The set is closed: every Metric value past ParseMetric is one of the
// constants below.
type Metric string

// Known metrics.
const (
	MetricGDPPerCapita   Metric = "gdpPercap"
	MetricLifeExpectancy Metric = "lifeExp"
	MetricPopulation     Metric = "pop"
)

// AllMetrics returns the closed metric set in display order.
func AllMetrics() []Metric {
	return []Metric{MetricGDPPerCapita, MetricLifeExpectancy, MetricPopulation}
}

// ParseMetric resolves a raw identifier into a Metric.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricGDPPerCapita, MetricLifeExpectancy, MetricPopulation:
		return m, nil
	default:
		return "", &UnknownMetricError{Metric: s}
	}
}

// Label returns the human-readable display string for the metric.
func (m Metric) Label() string {
	switch m {
	case MetricGDPPerCapita:
		return "GDP Per Capita"
	case MetricLifeExpectancy:
		return "Average Life Expectancy"
	case MetricPopulation:
		return "Population"
	default:
		// Unreachable for values produced by ParseMetric.
		return string(m)
	}
}

// String implements fmt.Stringer.
func (m Metric) String() string {
	return string(m)
}
