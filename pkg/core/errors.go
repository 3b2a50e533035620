package core

import (
	"fmt"
	"strings"
)

// LoadError reports a dataset that is missing or malformed.
// It is fatal to the session: there is no partial load.
type LoadError struct {
	// Source is the dataset location as configured.
	Source string
	// Row is the 1-based data row that failed, or 0 when the failure is not row specific.
	Row int
	// Missing lists required columns absent from the source.
	Missing []string
	// Err is the underlying cause, if any.
	Err error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "load dataset %s", e.Source)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing required columns: %s", strings.Join(e.Missing, ", "))
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// UnknownMetricError reports a metric identifier outside the closed set.
type UnknownMetricError struct {
	Metric string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric %q (expected one of gdpPercap, lifeExp, pop)", e.Metric)
}
