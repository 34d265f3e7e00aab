// Package adapter provides the database adapter contract and the shared
// information_schema introspection that concrete adapters build on.
//
// An adapter exposes its connected database as a lazily loaded catalog tree
// (see BuildCatalog). Concrete implementations are in pkg/adapters/
// subdirectories and register themselves from init().
package adapter

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leaperd/pkg/catalog"
	"github.com/leapstack-labs/leaperd/pkg/core"
)

// SchemaInfo describes one schema.
type SchemaInfo struct {
	Name   string
	Hidden bool
}

// TableInfo describes one table-like object.
type TableInfo struct {
	Name string
	Type core.EntityType
}

// ForeignKey describes a foreign key as read from the database.
type ForeignKey struct {
	Name       string
	Columns    []string
	RefSchema  string
	RefTable   string
	RefColumns []string
}

// Introspector reads catalog metadata from a database.
type Introspector interface {
	// Schemas lists the schemas of the connected database.
	Schemas(ctx context.Context) ([]SchemaInfo, error)

	// Tables lists the tables and views of a schema.
	Tables(ctx context.Context, schema string) ([]TableInfo, error)

	// Columns lists the columns of a table in ordinal order.
	Columns(ctx context.Context, schema, table string) ([]core.Attribute, error)

	// ForeignKeys lists the outbound foreign keys of a table.
	ForeignKeys(ctx context.Context, schema, table string) ([]ForeignKey, error)
}

// SchemaCacher is implemented by introspectors that can read the columns and
// foreign keys of a whole schema in one pass. Results are keyed by table name.
type SchemaCacher interface {
	SchemaColumns(ctx context.Context, schema string) (map[string][]core.Attribute, error)
	SchemaForeignKeys(ctx context.Context, schema string) (map[string][]ForeignKey, error)
}

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	Introspector

	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg core.TargetConfig) error

	// Close closes the database connection and releases resources.
	Close() error

	// Dialect returns the adapter's SQL conventions.
	Dialect() Dialect

	// Catalog returns the connected database as a catalog tree. Nothing is
	// read until the tree is walked. source supplies the name filters.
	Catalog(source core.DataSource) *catalog.Database
}

// Dialect holds the SQL conventions introspection depends on.
type Dialect struct {
	Name          string
	DefaultSchema string

	// HiddenSchemas are engine-internal schemas, matched case-insensitively.
	HiddenSchemas []string

	// HiddenPrefixes mark schemas whose names start with any of them as hidden.
	HiddenPrefixes []string

	// Placeholder formats the n-th (1-based) bind parameter. Nil means "?".
	Placeholder func(n int) string
}

// FormatPlaceholder returns the n-th bind parameter marker.
func (d Dialect) FormatPlaceholder(n int) string {
	if d.Placeholder == nil {
		return "?"
	}
	return d.Placeholder(n)
}

// IsHiddenSchema reports whether a schema is internal to the engine.
func (d Dialect) IsHiddenSchema(name string) bool {
	lower := strings.ToLower(name)
	for _, h := range d.HiddenSchemas {
		if strings.ToLower(h) == lower {
			return true
		}
	}
	for _, p := range d.HiddenPrefixes {
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// DollarPlaceholder formats PostgreSQL-style $n markers.
func DollarPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// DatabaseName derives a catalog name from a target. File paths are reduced
// to their base name without extension; an empty or in-memory target is "memory".
func DatabaseName(cfg core.TargetConfig) string {
	if cfg.Database == "" || cfg.Database == ":memory:" {
		return "memory"
	}
	base := filepath.Base(cfg.Database)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// EntityTypeOf maps an information_schema table_type to an entity type.
func EntityTypeOf(tableType string) core.EntityType {
	switch strings.ToUpper(strings.TrimSpace(tableType)) {
	case "VIEW":
		return core.EntityView
	case "MATERIALIZED VIEW":
		return core.EntityMaterializedView
	case "FOREIGN", "FOREIGN TABLE":
		return core.EntityExternal
	case "SYSTEM VIEW", "SYSTEM TABLE":
		return core.EntitySystemTable
	default:
		return core.EntityTable
	}
}
