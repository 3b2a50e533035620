// Package core defines the shared language of the gapview system.
//
// This package contains:
//   - Domain entities (Observation, Metric, Selection, FilteredView)
//   - The closed metric label map
//   - Typed errors (LoadError, UnknownMetricError)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
