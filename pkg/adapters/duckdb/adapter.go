// Package duckdb provides a DuckDB catalog adapter.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/leapstack-labs/leaperd/pkg/adapter"
	"github.com/leapstack-labs/leaperd/pkg/catalog"
	"github.com/leapstack-labs/leaperd/pkg/core"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

var dialect = adapter.Dialect{
	Name:          "duckdb",
	DefaultSchema: "main",
	HiddenSchemas: []string{"information_schema", "pg_catalog"},
}

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger, Dial: dialect},
	}
}

// Connect opens the DuckDB database. An empty path or ":memory:" opens an
// in-memory database. Params are applied before the connection is used.
func (a *Adapter) Connect(ctx context.Context, cfg core.TargetConfig) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Database
	if path == ":memory:" {
		path = ""
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", cfg.Database))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	if err := applyParams(ctx, db, params); err != nil {
		_ = db.Close()
		return err
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

var settingName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func applyParams(ctx context.Context, db *sql.DB, p *Params) error {
	for name, value := range p.Settings {
		if !settingName.MatchString(name) {
			return fmt.Errorf("invalid duckdb setting name %q", name)
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("SET %s = %s", name, quote(value))); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", name, err)
		}
	}
	for _, ext := range p.Extensions {
		if !settingName.MatchString(ext) {
			return fmt.Errorf("invalid duckdb extension name %q", ext)
		}
		if _, err := db.ExecContext(ctx, "INSTALL "+ext); err != nil {
			return fmt.Errorf("failed to install extension %s: %w", ext, err)
		}
		if _, err := db.ExecContext(ctx, "LOAD "+ext); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}
	for i, s := range p.Secrets {
		if _, err := db.ExecContext(ctx, buildCreateSecretSQL(s)); err != nil {
			return fmt.Errorf("failed to create secret %d (%s): %w", i, s.Type, err)
		}
	}
	return nil
}

// Catalog returns the connected database as a lazily loaded catalog tree.
func (a *Adapter) Catalog(source core.DataSource) *catalog.Database {
	return adapter.BuildCatalog(adapter.DatabaseName(a.Cfg), source, a, a.Logger)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
