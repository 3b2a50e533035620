// Package dataset loads the tidy observation table a dashboard session works on.
//
// A Dataset is read once and never mutated afterwards, so a single instance can
// be shared by reference across sessions and front ends without locking.
package dataset

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/leapstack-labs/gapview/internal/filter"
	"github.com/leapstack-labs/gapview/pkg/core"
)

// DefaultLocation is the dataset path used when none is configured.
const DefaultLocation = "Data/gapminder_tidy.csv"

// DefaultTable is the relation read from database sources.
const DefaultTable = "observations"

// Config selects the dataset source.
type Config struct {
	// Location is a .csv, .duckdb, .db or .sqlite path, or a postgres:// URL.
	Location string
	// Table names the relation for database sources.
	Table string
}

// Dataset is an immutable, ordered Observation set.
type Dataset struct {
	source       string
	observations []core.Observation
	continents   []string
	metrics      []core.Metric
	loadedAt     time.Time
}

// New builds a Dataset from already parsed observations.
// The slice is retained; callers must not modify it afterwards.
func New(source string, observations []core.Observation) (*Dataset, error) {
	if len(observations) == 0 {
		return nil, &core.LoadError{Source: source, Err: errors.New("dataset has no observations")}
	}
	return &Dataset{
		source:       source,
		observations: observations,
		continents:   filter.Continents(observations),
		metrics:      filter.Metrics(observations),
		loadedAt:     time.Now(),
	}, nil
}

// Load reads the configured source in full.
// Any failure is reported as a *core.LoadError.
func Load(ctx context.Context, cfg Config, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	src, err := ParseSource(cfg)
	if err != nil {
		return nil, &core.LoadError{Source: cfg.Location, Err: err}
	}

	start := time.Now()
	logger.Debug("loading dataset", "source", src.String())

	db, relation, err := src.Open(ctx)
	if err != nil {
		return nil, &core.LoadError{Source: src.String(), Err: err}
	}
	defer func() { _ = db.Close() }()

	observations, err := readObservations(ctx, db, src.String(), relation)
	if err != nil {
		return nil, err
	}

	ds, err := New(src.String(), observations)
	if err != nil {
		return nil, err
	}

	logger.Info("dataset loaded",
		"source", ds.source,
		"rows", len(ds.observations),
		"continents", len(ds.continents),
		"metrics", len(ds.metrics),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return ds, nil
}

// Source returns the location the dataset was read from, with secrets redacted.
func (d *Dataset) Source() string { return d.source }

// LoadedAt returns when the dataset was built.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Len returns the number of observations.
func (d *Dataset) Len() int { return len(d.observations) }

// Observations returns the full ordered Observation set.
// The returned slice is shared and must be treated as read-only.
func (d *Dataset) Observations() []core.Observation { return d.observations }

// Continents returns the distinct continents in first appearance order.
func (d *Dataset) Continents() []string { return slices.Clone(d.continents) }

// Metrics returns the distinct metrics in first appearance order.
func (d *Dataset) Metrics() []core.Metric { return slices.Clone(d.metrics) }

// HasContinent reports whether continent occurs in the dataset.
func (d *Dataset) HasContinent(continent string) bool {
	return slices.Contains(d.continents, continent)
}

// HasMetric reports whether metric occurs in the dataset.
func (d *Dataset) HasMetric(metric core.Metric) bool {
	return slices.Contains(d.metrics, metric)
}
