package adapter

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/leaperd/pkg/catalog"
	"github.com/leapstack-labs/leaperd/pkg/core"
)

// BuildCatalog wraps an introspector in a lazily loaded catalog tree named
// name. Schemas, tables, columns and foreign keys are read on first access.
// When in also implements SchemaCacher, caching a schema's structure reads
// all of its columns and foreign keys at once.
func BuildCatalog(name string, source core.DataSource, in Introspector, logger *slog.Logger) *catalog.Database {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db := catalog.NewDatabase(name, source)
	db.SetLoader(func(ctx context.Context) ([]core.Object, error) {
		infos, err := in.Schemas(ctx)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded schemas", slog.String("database", name), slog.Int("count", len(infos)))

		schemas := make([]core.Object, 0, len(infos))
		for _, info := range infos {
			schemas = append(schemas, newSchema(db, info, in, logger))
		}
		return schemas, nil
	})
	return db
}

func newSchema(db *catalog.Database, info SchemaInfo, in Introspector, logger *slog.Logger) *catalog.Schema {
	schema := catalog.NewSchema(db, info.Name)
	schema.SetHidden(info.Hidden)

	schema.SetLoader(func(ctx context.Context) ([]core.Object, error) {
		infos, err := in.Tables(ctx, info.Name)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded tables", slog.String("schema", schema.ID()), slog.Int("count", len(infos)))

		tables := make([]core.Object, 0, len(infos))
		for _, ti := range infos {
			tables = append(tables, newTable(schema, ti, in))
		}
		return tables, nil
	})

	if bulk, ok := in.(SchemaCacher); ok {
		schema.SetCacher(func(ctx context.Context, scope core.StructScope) error {
			return cacheSchema(ctx, schema, bulk, scope)
		})
	}
	return schema
}

func newTable(schema *catalog.Schema, info TableInfo, in Introspector) *catalog.Table {
	t := catalog.NewTable(schema, info.Name, info.Type)
	t.SetAttributeLoader(func(ctx context.Context) ([]core.Attribute, error) {
		return in.Columns(ctx, schema.Name(), info.Name)
	})
	t.SetAssociationLoader(func(ctx context.Context) ([]core.Association, error) {
		fks, err := in.ForeignKeys(ctx, schema.Name(), info.Name)
		if err != nil {
			return nil, err
		}
		return associations(schema.Database().Name(), fks), nil
	})
	return t
}

func cacheSchema(ctx context.Context, schema *catalog.Schema, bulk SchemaCacher, scope core.StructScope) error {
	if scope&(core.StructAttributes|core.StructAssociations) == 0 {
		return nil
	}

	children, err := schema.Children(ctx)
	if err != nil {
		return err
	}

	var columns map[string][]core.Attribute
	if scope&core.StructAttributes != 0 {
		if columns, err = bulk.SchemaColumns(ctx, schema.Name()); err != nil {
			return err
		}
	}
	var fks map[string][]ForeignKey
	if scope&core.StructAssociations != 0 {
		if fks, err = bulk.SchemaForeignKeys(ctx, schema.Name()); err != nil {
			return err
		}
	}

	dbName := schema.Database().Name()
	for _, child := range children {
		t, ok := child.(*catalog.Table)
		if !ok {
			continue
		}
		if columns != nil {
			t.SetAttributes(columns[t.Name()])
		}
		if fks != nil {
			t.SetAssociations(associations(dbName, fks[t.Name()]))
		}
	}
	return nil
}

func associations(dbName string, fks []ForeignKey) []core.Association {
	out := make([]core.Association, 0, len(fks))
	for _, fk := range fks {
		out = append(out, core.Association{
			Name:               fk.Name,
			ReferencedEntityID: dbName + "." + fk.RefSchema + "." + fk.RefTable,
			Columns:            fk.Columns,
			ReferencedColumns:  fk.RefColumns,
		})
	}
	return out
}
