// Package config provides configuration management for the leaperd CLI.
//
// This package extends the shared configuration types from pkg/core
// with CLI-specific fields and functionality. The shared types (TargetConfig,
// FilterConfig, DiagramConfig) are defined in pkg/core and re-exported here
// via type aliases for convenience.
package config

import (
	sharedcfg "github.com/leapstack-labs/leaperd/internal/config"
	"github.com/leapstack-labs/leaperd/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// FilterConfig is an alias for the shared filter configuration.
type FilterConfig = core.FilterConfig

// DiagramConfig is an alias for the shared diagram configuration.
type DiagramConfig = core.DiagramConfig

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot  string                  `koanf:"-"`
	CatalogFile  string                  `koanf:"catalog_file"`
	StatePath    string                  `koanf:"state_path"`
	Environment  string                  `koanf:"environment"`
	Verbose      bool                    `koanf:"verbose"`
	OutputFormat string                  `koanf:"output"`
	Target       *TargetConfig           `koanf:"target"`
	Diagram      DiagramConfig           `koanf:"diagram"`
	Filters      map[string]FilterConfig `koanf:"filters"`
	Environments map[string]EnvConfig    `koanf:"environments"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	CatalogFile string                  `koanf:"catalog_file"`
	Target      *TargetConfig           `koanf:"target"`
	Filters     map[string]FilterConfig `koanf:"filters"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultStateFile   = sharedcfg.DefaultStateFile
	DefaultDiagramName = sharedcfg.DefaultDiagramName
	DefaultAttributes  = sharedcfg.DefaultAttributes
	DefaultOutput      = sharedcfg.DefaultOutput
	DefaultEnv         = "dev"
)

// UsesCatalogFile reports whether collection reads a YAML catalog instead of a live target.
func (c *Config) UsesCatalogFile() bool {
	return c.CatalogFile != ""
}
