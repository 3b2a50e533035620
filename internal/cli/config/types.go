// Package config provides configuration management for the gapview CLI.
//
// Values are layered from defaults, a gapview.yaml project file, GAPVIEW_
// environment variables and explicitly set command-line flags, in that
// order of increasing precedence.
package config

import (
	"time"

	"github.com/leapstack-labs/gapview/internal/dataset"
	"github.com/leapstack-labs/gapview/internal/selection"
	"github.com/leapstack-labs/gapview/pkg/core"
)

// Config holds all CLI configuration options.
type Config struct {
	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot  string          `koanf:"-"`
	Dataset      DatasetConfig   `koanf:"dataset"`
	Selection    SelectionConfig `koanf:"selection"`
	Serve        ServeConfig     `koanf:"serve"`
	Verbose      bool            `koanf:"verbose"`
	OutputFormat string          `koanf:"output"`
}

// DatasetConfig selects where observations are read from.
type DatasetConfig struct {
	Location string `koanf:"location"`
	Table    string `koanf:"table"`
}

// SelectionConfig is the initial selection of the terminal front ends.
type SelectionConfig struct {
	Continent string      `koanf:"continent"`
	Metric    core.Metric `koanf:"metric"`
	Countries []string    `koanf:"countries"`
	ShowTable bool        `koanf:"show_table"`
}

// ServeConfig holds configuration for the web dashboard.
type ServeConfig struct {
	Port            int           `koanf:"port"`
	Watch           bool          `koanf:"watch"`
	Open            bool          `koanf:"open"`
	Dev             bool          `koanf:"dev"`
	SessionSecret   string        `koanf:"session_secret"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Default configuration values.
const (
	DefaultPort            = 8765
	DefaultOutput          = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultShutdownTimeout = 5 * time.Second
	// DefaultSessionSecret is only suitable for local use.
	DefaultSessionSecret = "gapview-dev-secret-change-in-production" //nolint:gosec
)

// DatasetSource returns the loader configuration.
func (c *Config) DatasetSource() dataset.Config {
	return dataset.Config{
		Location: c.Dataset.Location,
		Table:    c.Dataset.Table,
	}
}

// Request returns the configured initial selection as a request.
// An empty country list means all countries.
func (s SelectionConfig) Request() selection.Request {
	req := selection.Request{
		Continent: s.Continent,
		Metric:    string(s.Metric),
		ShowTable: s.ShowTable,
	}
	if len(s.Countries) > 0 {
		req.Countries = append([]string(nil), s.Countries...)
	}
	return req
}
