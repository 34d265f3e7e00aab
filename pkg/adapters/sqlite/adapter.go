// Package sqlite provides a SQLite catalog adapter built on the pure Go
// modernc.org/sqlite driver. SQLite has no information_schema, so
// introspection goes through sqlite_master and the pragma table functions.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leaperd/pkg/adapter"
	"github.com/leapstack-labs/leaperd/pkg/catalog"
	"github.com/leapstack-labs/leaperd/pkg/core"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

var dialect = adapter.Dialect{
	Name:          "sqlite",
	DefaultSchema: "main",
	HiddenSchemas: []string{"temp"},
}

var errNotConnected = errors.New("database connection not established")

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger, Dial: dialect},
	}
}

// Connect opens the SQLite database file read-only. An empty path or
// ":memory:" opens a writable in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg core.TargetConfig) error {
	path := cfg.Database
	memory := path == "" || path == ":memory:"

	dsn := "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)"
	if memory {
		dsn = ":memory:"
	}

	a.Logger.Debug("connecting to sqlite", slog.String("path", path))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// Schemas lists the attached databases.
func (a *Adapter) Schemas(ctx context.Context) ([]adapter.SchemaInfo, error) {
	if a.DB == nil {
		return nil, errNotConnected
	}

	rows, err := a.DB.QueryContext(ctx, `SELECT name FROM pragma_database_list ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schemas: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var schemas []adapter.SchemaInfo
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan schema: %w", err)
		}
		if a.Cfg.Schema != "" && name != a.Cfg.Schema {
			continue
		}
		schemas = append(schemas, adapter.SchemaInfo{Name: name, Hidden: a.Dial.IsHiddenSchema(name)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schemas: %w", err)
	}
	return schemas, nil
}

// Tables lists tables and views. Internal sqlite_ tables are system tables.
func (a *Adapter) Tables(ctx context.Context, schema string) ([]adapter.TableInfo, error) {
	if a.DB == nil {
		return nil, errNotConnected
	}

	//nolint:gosec // schema is quoted as an identifier
	query := fmt.Sprintf(`
		SELECT name, type FROM %s.sqlite_master
		WHERE type IN ('table', 'view')
		ORDER BY name`, quoteIdent(schema))

	rows, err := a.DB.QueryContext(ctx, query)
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
		t := adapter.TableInfo{Name: name, Type: core.EntityTable}
		switch {
		case hidden || strings.HasPrefix(name, "sqlite_"):
			t.Type = core.EntitySystemTable
		case typ == "view":
			t.Type = core.EntityView
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

// Columns lists the columns of a table.
func (a *Adapter) Columns(ctx context.Context, schema, table string) ([]core.Attribute, error) {
	byTable, err := a.queryColumns(ctx, schema, table)
	if err != nil {
		return nil, err
	}
	return byTable[table], nil
}

// SchemaColumns lists the columns of every table and view in a schema.
func (a *Adapter) SchemaColumns(ctx context.Context, schema string) (map[string][]core.Attribute, error) {
	return a.queryColumns(ctx, schema, "")
}

// ForeignKeys lists the outbound foreign keys of a table.
func (a *Adapter) ForeignKeys(ctx context.Context, schema, table string) ([]adapter.ForeignKey, error) {
	byTable, err := a.queryForeignKeys(ctx, schema, table)
	if err != nil {
		return nil, err
	}
	return byTable[table], nil
}

// SchemaForeignKeys lists the foreign keys of every table in a schema.
func (a *Adapter) SchemaForeignKeys(ctx context.Context, schema string) (map[string][]adapter.ForeignKey, error) {
	return a.queryForeignKeys(ctx, schema, "")
}

func (a *Adapter) queryColumns(ctx context.Context, schema, table string) (map[string][]core.Attribute, error) {
	if a.DB == nil {
		return nil, errNotConnected
	}

	args := []any{schema}
	//nolint:gosec // schema is quoted as an identifier
	query := fmt.Sprintf(`
		SELECT m.name, p.name, p.type, p."notnull", p.pk, p.cid
		FROM %s.sqlite_master AS m
		JOIN pragma_table_info(m.name, ?) AS p
		WHERE m.type IN ('table', 'view')`, quoteIdent(schema))
	if table != "" {
		query += " AND m.name = ?"
		args = append(args, table)
	}
	query += " ORDER BY m.name, p.cid"

	rows, err := a.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]core.Attribute)
	for rows.Next() {
		var tableName string
		var notNull, pk, cid int
		var col core.Attribute
		if err := rows.Scan(&tableName, &col.Name, &col.Type, &notNull, &pk, &cid); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = notNull == 0 && pk == 0
		col.PrimaryKey = pk > 0
		col.Position = cid + 1
		out[tableName] = append(out[tableName], col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	return out, nil
}

func (a *Adapter) queryForeignKeys(ctx context.Context, schema, table string) (map[string][]adapter.ForeignKey, error) {
	if a.DB == nil {
		return nil, errNotConnected
	}

	args := []any{schema}
	//nolint:gosec // schema is quoted as an identifier
	query := fmt.Sprintf(`
		SELECT m.name, f.id, f."table", f."from", f."to"
		FROM %s.sqlite_master AS m
		JOIN pragma_foreign_key_list(m.name, ?) AS f
		WHERE m.type = 'table'`, quoteIdent(schema))
	if table != "" {
		query += " AND m.name = ?"
		args = append(args, table)
	}
	query += " ORDER BY m.name, f.id, f.seq"

	rows, err := a.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cols []adapter.FKColumn
	for rows.Next() {
		var c adapter.FKColumn
		var id int
		var to sql.NullString
		if err := rows.Scan(&c.Table, &id, &c.RefTable, &c.Column, &to); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		c.Name = fmt.Sprintf("fk_%s_%d", c.Table, id)
		c.RefSchema = schema
		c.RefColumn = to.String
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreign keys: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	fks := adapter.GroupForeignKeys(cols)
	if err := a.fillImplicitTargets(ctx, schema, fks); err != nil {
		return nil, err
	}
	return fks, nil
}

// fillImplicitTargets resolves foreign keys declared without target columns,
// which reference the target table's primary key.
func (a *Adapter) fillImplicitTargets(ctx context.Context, schema string, fks map[string][]adapter.ForeignKey) error {
	for table, list := range fks {
		for i, fk := range list {
			if !hasEmpty(fk.RefColumns) {
				continue
			}
			cols, err := a.Columns(ctx, schema, fk.RefTable)
			if err != nil {
				return err
			}
			var pk []string
			for _, c := range cols {
				if c.PrimaryKey {
					pk = append(pk, c.Name)
				}
			}
			if len(pk) == len(fk.Columns) {
				fks[table][i].RefColumns = pk
			}
		}
	}
	return nil
}

func hasEmpty(list []string) bool {
	for _, s := range list {
		if s == "" {
			return true
		}
	}
	return false
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Catalog returns the connected database as a lazily loaded catalog tree.
func (a *Adapter) Catalog(source core.DataSource) *catalog.Database {
	return adapter.BuildCatalog(adapter.DatabaseName(a.Cfg), source, a, a.Logger)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
