package config

import (
	"fmt"

	intconfig "github.com/leapstack-labs/leaperd/internal/config"
)

// validOutputs lists the accepted values of the output key.
var validOutputs = map[string]bool{
	"":         true,
	"auto":     true,
	"text":     true,
	"markdown": true,
	"json":     true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := intconfig.ValidateDiagram(c.Diagram); err != nil {
		return fmt.Errorf("invalid diagram configuration: %w", err)
	}
	if err := intconfig.ValidateFilters(c.Filters); err != nil {
		return fmt.Errorf("invalid filter configuration: %w", err)
	}
	if !validOutputs[c.OutputFormat] {
		return fmt.Errorf("unknown output format %q (expected auto, text, markdown or json)", c.OutputFormat)
	}
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	return nil
}

// ValidateSource checks that a catalog source is configured.
// Only commands that read a catalog call it.
func (c *Config) ValidateSource() error {
	if c.CatalogFile != "" {
		return nil
	}
	if c.Target == nil {
		return fmt.Errorf("no catalog source configured\nHint: set target in leaperd.yaml or pass --catalog-file")
	}
	if err := intconfig.ValidateTarget(c.Target); err != nil {
		return fmt.Errorf("invalid target configuration: %w", err)
	}
	return nil
}
