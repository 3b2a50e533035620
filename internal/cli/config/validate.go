package config

import (
	"fmt"

	"github.com/leapstack-labs/gapview/internal/render"
)

// outputModes are the accepted values of the output setting.
var outputModes = []string{"auto", "text", "markdown", "json", "csv"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dataset.Location == "" {
		return fmt.Errorf("dataset.location is required")
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port %d is out of range", c.Serve.Port)
	}
	if c.OutputFormat != "" && c.OutputFormat != "auto" {
		if _, err := render.ParseFormat(c.OutputFormat); err != nil {
			return fmt.Errorf("invalid output %q (expected one of %v)", c.OutputFormat, outputModes)
		}
	}
	return nil
}
