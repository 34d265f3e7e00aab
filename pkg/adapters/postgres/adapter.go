// Package postgres provides a PostgreSQL catalog adapter.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/leapstack-labs/leaperd/pkg/adapter"
	"github.com/leapstack-labs/leaperd/pkg/catalog"
	"github.com/leapstack-labs/leaperd/pkg/core"
)

var dialect = adapter.Dialect{
	Name:           "postgres",
	DefaultSchema:  "public",
	HiddenSchemas:  []string{"information_schema"},
	HiddenPrefixes: []string{"pg_"},
	Placeholder:    adapter.DollarPlaceholder,
}

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger, Dial: dialect},
	}
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg core.TargetConfig) error {
	connCfg, err := pgx.ParseConfig(buildPostgresDSN(cfg))
	if err != nil {
		return fmt.Errorf("invalid postgres connection settings: %w", err)
	}

	a.Logger.Debug("connecting to postgres", slog.String("host", connCfg.Host), slog.String("database", connCfg.Database))

	db := stdlib.OpenDB(*connCfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN constructs a key=value PostgreSQL connection string.
// Options other than sslmode are appended in sorted order.
func buildPostgresDSN(cfg core.TargetConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	parts := []string{
		"host=" + dsnValue(host),
		fmt.Sprintf("port=%d", port),
		"dbname=" + dsnValue(cfg.Database),
		"sslmode=" + dsnValue(sslmode),
	}
	if cfg.User != "" {
		parts = append(parts, "user="+dsnValue(cfg.User))
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+dsnValue(cfg.Password))
	}
	for _, key := range sortedKeys(cfg.Options) {
		if key == "sslmode" {
			continue
		}
		parts = append(parts, key+"="+dsnValue(cfg.Options[key]))
	}
	return strings.Join(parts, " ")
}

// dsnValue quotes a value when it is empty or contains spaces or quotes.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Tables lists tables and views, including materialized views which
// information_schema does not report.
func (a *Adapter) Tables(ctx context.Context, schema string) ([]adapter.TableInfo, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT table_name, table_type FROM information_schema.tables WHERE table_schema = $1
		UNION ALL
		SELECT matviewname, 'MATERIALIZED VIEW' FROM pg_matviews WHERE schemaname = $1
		ORDER BY 1`, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables of %s: %w", schema, err)
	}
	defer func() { _ = rows.Close() }()

	hidden := a.Dial.IsHiddenSchema(schema)
	var tables []adapter.TableInfo
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		t := adapter.TableInfo{Name: name, Type: adapter.EntityTypeOf(typ)}
		if hidden {
			t.Type = core.EntitySystemTable
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

// Catalog returns the connected database as a lazily loaded catalog tree.
func (a *Adapter) Catalog(source core.DataSource) *catalog.Database {
	return adapter.BuildCatalog(a.Cfg.Database, source, a, a.Logger)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
