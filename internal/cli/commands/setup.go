package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leaperd/internal/cli/config"
	"github.com/leapstack-labs/leaperd/internal/cli/output"
	"github.com/leapstack-labs/leaperd/internal/state"
	"github.com/leapstack-labs/leaperd/pkg/adapter"
	"github.com/leapstack-labs/leaperd/pkg/catalog"
	"github.com/leapstack-labs/leaperd/pkg/core"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		StatePath:    config.DefaultStateFile,
		OutputFormat: config.DefaultOutput,
		Diagram: config.DiagramConfig{
			Name:       config.DefaultDiagramName,
			ShowViews:  true,
			Attributes: config.DefaultAttributes,
		},
	}
}

// openStore opens and migrates the state database, creating its directory.
// Callers must Close the returned store.
func openStore(cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	if cfg.StatePath != ":memory:" {
		stateDir := filepath.Dir(cfg.StatePath)
		if stateDir != "." && stateDir != "" {
			if err := os.MkdirAll(stateDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}
	return store, nil
}

// loadRoots returns the catalog roots to collect from: the YAML catalog file
// when configured, otherwise the live target. The cleanup function closes
// any adapter connection and must be called once collection is done.
func loadRoots(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]core.Object, func(), error) {
	if err := cfg.ValidateSource(); err != nil {
		return nil, nil, err
	}

	filters, err := catalog.NewFilters(cfg.Filters)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile filters: %w", err)
	}

	if cfg.UsesCatalogFile() {
		cat, err := catalog.LoadYAMLFile(cfg.CatalogFile, filters)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("loaded catalog file", slog.String("path", cfg.CatalogFile), slog.Int("roots", len(cat.Roots())))
		return cat.Roots(), func() {}, nil
	}

	a, err := adapter.Open(ctx, *cfg.Target, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s target: %w", cfg.Target.Type, err)
	}
	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close adapter", slog.Any("error", err))
		}
	}
	return []core.Object{a.Catalog(filters)}, cleanup, nil
}

// selectRoots narrows roots to the objects named by paths (db/schema/table).
// With no paths every root is returned.
func selectRoots(ctx context.Context, roots []core.Object, paths []string) ([]any, error) {
	if len(paths) == 0 {
		objects := make([]any, len(roots))
		for i, r := range roots {
			objects[i] = r
		}
		return objects, nil
	}

	objects := make([]any, 0, len(paths))
	for _, p := range paths {
		obj, err := catalog.Resolve(ctx, roots, p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", p, err)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}
