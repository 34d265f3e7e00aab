package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCollectCommand(t *testing.T) {
	cmd := NewCollectCommand()

	assert.Equal(t, "collect", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	// Catalog source and diagram flags are global persistent flags on root
	flags := []string{"path", "dry-run", "watch"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewShowCommand(t *testing.T) {
	cmd := NewShowCommand()

	assert.Equal(t, "show [diagram]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NoError(t, cmd.Args(cmd, []string{"sales"}))
	assert.Error(t, cmd.Args(cmd, []string{"a", "b"}))
}

func TestNewLayersCommand(t *testing.T) {
	cmd := NewLayersCommand()

	assert.Equal(t, "layers [diagram]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("entity"), "flag %q should exist", "entity")
}

func TestNewDiagramsCommand(t *testing.T) {
	cmd := NewDiagramsCommand()

	assert.Equal(t, "diagrams", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	subcommands := map[string]string{
		"list":   "ls",
		"delete": "rm",
	}
	for name, alias := range subcommands {
		sub, _, err := cmd.Find([]string{name})
		if assert.NoError(t, err, "subcommand %q should exist", name) {
			assert.Contains(t, sub.Aliases, alias)
		}
	}

	runs, _, err := cmd.Find([]string{"runs"})
	assert.NoError(t, err)
	limit := runs.Flags().Lookup("limit")
	if assert.NotNil(t, limit) {
		assert.Equal(t, "20", limit.DefValue)
	}
}

func TestSelectRoots(t *testing.T) {
	t.Run("no paths returns every root", func(t *testing.T) {
		objects, err := selectRoots(t.Context(), nil, nil)
		assert.NoError(t, err)
		assert.Empty(t, objects)
	})

	t.Run("unknown path", func(t *testing.T) {
		_, err := selectRoots(t.Context(), nil, []string{"missing/schema"})
		assert.ErrorContains(t, err, `failed to resolve "missing/schema"`)
	})
}

func TestGetConfigDefaults(t *testing.T) {
	cfg := getConfig()

	assert.Equal(t, "default", cfg.Diagram.Name)
	assert.True(t, cfg.Diagram.ShowViews)
	assert.Equal(t, "all", cfg.Diagram.Attributes)
}
