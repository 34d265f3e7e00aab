package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leaperd/pkg/core"
)

var errNotConnected = errors.New("database connection not established")

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed it in concrete adapters to get Close, Dialect and information_schema
// based introspection.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.TargetConfig
	Logger *slog.Logger
	Dial   Dialect
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// Dialect returns the adapter's SQL conventions.
func (b *BaseSQLAdapter) Dialect() Dialect {
	return b.Dial
}

func (b *BaseSQLAdapter) ph(n int) string {
	return b.Dial.FormatPlaceholder(n)
}

// Schemas lists the schemas of the current database. When the target names
// a schema only that one is returned.
func (b *BaseSQLAdapter) Schemas(ctx context.Context) ([]SchemaInfo, error) {
	if b.DB == nil {
		return nil, errNotConnected
	}

	rows, err := b.DB.QueryContext(ctx, `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE catalog_name = current_database()
		ORDER BY schema_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schemas: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var schemas []SchemaInfo
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan schema: %w", err)
		}
		if b.Cfg.Schema != "" && name != b.Cfg.Schema {
			continue
		}
		schemas = append(schemas, SchemaInfo{Name: name, Hidden: b.Dial.IsHiddenSchema(name)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schemas: %w", err)
	}
	return schemas, nil
}

// Tables lists the tables and views of a schema. Everything in a hidden
// schema is reported as a system table.
func (b *BaseSQLAdapter) Tables(ctx context.Context, schema string) ([]TableInfo, error) {
	if b.DB == nil {
		return nil, errNotConnected
	}

	//nolint:gosec // Placeholders are safe - they come from Dialect.FormatPlaceholder
	query := fmt.Sprintf(`
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = %s
		ORDER BY table_name`, b.ph(1))

	rows, err := b.DB.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables of %s: %w", schema, err)
	}
	defer func() { _ = rows.Close() }()

	hidden := b.Dial.IsHiddenSchema(schema)
	var tables []TableInfo
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		t := TableInfo{Name: name, Type: EntityTypeOf(typ)}
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

// Columns lists the columns of a table with primary key flags.
func (b *BaseSQLAdapter) Columns(ctx context.Context, schema, table string) ([]core.Attribute, error) {
	byTable, err := b.queryColumns(ctx, schema, table)
	if err != nil {
		return nil, err
	}
	return byTable[table], nil
}

// SchemaColumns lists the columns of every table in a schema.
func (b *BaseSQLAdapter) SchemaColumns(ctx context.Context, schema string) (map[string][]core.Attribute, error) {
	return b.queryColumns(ctx, schema, "")
}

// ForeignKeys lists the outbound foreign keys of a table.
func (b *BaseSQLAdapter) ForeignKeys(ctx context.Context, schema, table string) ([]ForeignKey, error) {
	byTable, err := b.queryForeignKeys(ctx, schema, table)
	if err != nil {
		return nil, err
	}
	return byTable[table], nil
}

// SchemaForeignKeys lists the foreign keys of every table in a schema.
func (b *BaseSQLAdapter) SchemaForeignKeys(ctx context.Context, schema string) (map[string][]ForeignKey, error) {
	return b.queryForeignKeys(ctx, schema, "")
}

// queryColumns reads columns for one table, or for the whole schema when table is empty.
func (b *BaseSQLAdapter) queryColumns(ctx context.Context, schema, table string) (map[string][]core.Attribute, error) {
	if b.DB == nil {
		return nil, errNotConnected
	}

	pks, err := b.queryPrimaryKeys(ctx, schema, table)
	if err != nil {
		return nil, err
	}

	args := []any{schema}
	//nolint:gosec // Placeholders are safe - they come from Dialect.FormatPlaceholder
	query := fmt.Sprintf(`
		SELECT table_name, column_name, data_type, is_nullable, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s`, b.ph(1))
	if table != "" {
		query += " AND table_name = " + b.ph(2)
		args = append(args, table)
	}
	query += " ORDER BY table_name, ordinal_position"

	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]core.Attribute)
	for rows.Next() {
		var tableName, nullable string
		var col core.Attribute
		if err := rows.Scan(&tableName, &col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		col.PrimaryKey = pks[tableName][col.Name]
		out[tableName] = append(out[tableName], col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	return out, nil
}

func (b *BaseSQLAdapter) queryPrimaryKeys(ctx context.Context, schema, table string) (map[string]map[string]bool, error) {
	args := []any{schema}
	//nolint:gosec // Placeholders are safe - they come from Dialect.FormatPlaceholder
	query := fmt.Sprintf(`
		SELECT kcu.table_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_schema = tc.constraint_schema
			AND kcu.constraint_name = tc.constraint_name
			AND kcu.table_name = tc.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = %s`, b.ph(1))
	if table != "" {
		query += " AND tc.table_name = " + b.ph(2)
		args = append(args, table)
	}

	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query primary keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	pks := make(map[string]map[string]bool)
	for rows.Next() {
		var tableName, column string
		if err := rows.Scan(&tableName, &column); err != nil {
			return nil, fmt.Errorf("failed to scan primary key: %w", err)
		}
		if pks[tableName] == nil {
			pks[tableName] = make(map[string]bool)
		}
		pks[tableName][column] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating primary keys: %w", err)
	}
	return pks, nil
}

func (b *BaseSQLAdapter) queryForeignKeys(ctx context.Context, schema, table string) (map[string][]ForeignKey, error) {
	if b.DB == nil {
		return nil, errNotConnected
	}

	args := []any{schema}
	//nolint:gosec // Placeholders are safe - they come from Dialect.FormatPlaceholder
	query := fmt.Sprintf(`
		SELECT kcu.table_name, kcu.constraint_name, kcu.column_name,
			rku.table_schema, rku.table_name, rku.column_name
		FROM information_schema.referential_constraints rc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_schema = rc.constraint_schema
			AND kcu.constraint_name = rc.constraint_name
		JOIN information_schema.key_column_usage rku
			ON rku.constraint_schema = rc.unique_constraint_schema
			AND rku.constraint_name = rc.unique_constraint_name
			AND rku.ordinal_position = kcu.position_in_unique_constraint
		WHERE kcu.table_schema = %s`, b.ph(1))
	if table != "" {
		query += " AND kcu.table_name = " + b.ph(2)
		args = append(args, table)
	}
	query += " ORDER BY kcu.table_name, kcu.constraint_name, kcu.ordinal_position"

	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cols []FKColumn
	for rows.Next() {
		var c FKColumn
		if err := rows.Scan(&c.Table, &c.Name, &c.Column, &c.RefSchema, &c.RefTable, &c.RefColumn); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreign keys: %w", err)
	}
	return GroupForeignKeys(cols), nil
}

// FKColumn is one column pair of a foreign key.
type FKColumn struct {
	Table     string
	Name      string
	Column    string
	RefSchema string
	RefTable  string
	RefColumn string
}

// GroupForeignKeys folds column pairs into foreign keys keyed by table.
// Pairs of one constraint must be adjacent and in column order.
func GroupForeignKeys(cols []FKColumn) map[string][]ForeignKey {
	out := make(map[string][]ForeignKey)
	for _, r := range cols {
		fks := out[r.Table]
		if n := len(fks); n > 0 && fks[n-1].Name == r.Name {
			fks[n-1].Columns = append(fks[n-1].Columns, r.Column)
			fks[n-1].RefColumns = append(fks[n-1].RefColumns, r.RefColumn)
			continue
		}
		out[r.Table] = append(fks, ForeignKey{
			Name:       r.Name,
			Columns:    []string{r.Column},
			RefSchema:  r.RefSchema,
			RefTable:   r.RefTable,
			RefColumns: []string{r.RefColumn},
		})
	}
	return out
}
