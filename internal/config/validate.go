// Package config provides configuration defaults and validation shared by
// the CLI and library callers that build collectors from configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaperd/internal/diagram"
	"github.com/leapstack-labs/leaperd/pkg/adapter"
	"github.com/leapstack-labs/leaperd/pkg/core"
)

// ValidateTarget checks that the target names a registered adapter.
// The adapter registry is the single source of truth for supported types.
func ValidateTarget(t *core.TargetConfig) error {
	if t == nil {
		return nil
	}
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}

// ValidateDiagram checks diagram preferences.
func ValidateDiagram(d core.DiagramConfig) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("diagram name is required")
	}
	if _, err := diagram.ParseAttributeVisibility(d.Attributes); err != nil {
		return err
	}
	return nil
}

// ValidateFilters checks that every filter is keyed by a known child type.
func ValidateFilters(filters map[string]core.FilterConfig) error {
	for typ := range filters {
		switch core.TypeTag(typ) {
		case core.TypeDatabase, core.TypeSchema, core.TypeFolder, core.TypeTable:
		default:
			return fmt.Errorf("unknown filter type %q (expected database, schema, folder or table)", typ)
		}
	}
	return nil
}
