package config

import (
	"strings"

	"github.com/leapstack-labs/leaperd/pkg/core"
)

// Default configuration values.
const (
	DefaultStateFile   = ".leaperd/state.db"
	DefaultDiagramName = "default"
	DefaultAttributes  = "all"
	DefaultOutput      = "auto" // TTY=text, non-TTY=markdown
	DefaultTargetType  = "duckdb"
)

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *core.TargetConfig) {
	if t == nil {
		return
	}
	if t.Type == "" {
		t.Type = DefaultTargetType
	}
	t.Type = strings.ToLower(t.Type)

	if t.Type == "postgres" {
		if t.Port == 0 {
			t.Port = 5432
		}
		if t.Host == "" {
			t.Host = "localhost"
		}
	}
	if (t.Type == "duckdb" || t.Type == "sqlite") && t.Database == "" {
		t.Database = ":memory:"
	}
}
