package catalog

import (
	"context"
	"slices"

	"github.com/leapstack-labs/leaperd/pkg/core"
)

// Schema is a container of tables inside a database.
type Schema struct {
	db     *Database
	name   string
	hidden bool
	tables lazy[[]core.Object]
	cache  Cacher
}

// NewSchema creates a schema that belongs to db without adding it to db's
// children. Loaders use it to build their results.
func NewSchema(db *Database, name string) *Schema {
	return &Schema{db: db, name: name}
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Kind reports the schema as a container.
func (s *Schema) Kind() core.Kind { return core.KindContainer }

// ChildType returns the table type tag.
func (s *Schema) ChildType() core.TypeTag { return core.TypeTable }

// Database returns the owning database.
func (s *Schema) Database() *Database { return s.db }

// ID returns the qualified schema name.
func (s *Schema) ID() string {
	if s.db == nil {
		return s.name
	}
	return s.db.name + "." + s.name
}

// DataSource returns the owning database's data source.
func (s *Schema) DataSource() core.DataSource {
	if s.db == nil {
		return nil
	}
	return s.db.source
}

// IsHidden reports whether the schema is internal to the database engine.
func (s *Schema) IsHidden() bool { return s.hidden }

// SetHidden marks the schema hidden.
func (s *Schema) SetHidden(hidden bool) { s.hidden = hidden }

// AddTable appends a new table of the given type.
func (s *Schema) AddTable(name string, typ core.EntityType) *Table {
	t := NewTable(s, name, typ)
	s.Add(t)
	return t
}

// Add appends an arbitrary child object.
func (s *Schema) Add(obj core.Object) {
	s.tables.update(func(items []core.Object) []core.Object {
		return append(items, obj)
	})
}

// SetLoader installs a loader that lists the tables on first access.
func (s *Schema) SetLoader(load Loader) {
	s.tables.setLoader(load)
}

// SetCacher installs the bulk-load hook run by CacheStructure.
func (s *Schema) SetCacher(cache Cacher) {
	s.cache = cache
}

// CacheStructure runs the cache hook, if any, and loads the table list.
func (s *Schema) CacheStructure(ctx context.Context, scope core.StructScope) error {
	if s.cache != nil {
		if err := s.cache(ctx, scope); err != nil {
			return &core.AccessError{Op: "cache structure", Object: s.ID(), Err: err}
		}
	}
	_, err := s.Children(ctx)
	return err
}

// Children lists the schema's tables.
func (s *Schema) Children(ctx context.Context) ([]core.Object, error) {
	items, err := s.tables.get(ctx)
	if err != nil {
		return nil, &core.AccessError{Op: "list children", Object: s.ID(), Err: err}
	}
	return slices.Clone(items), nil
}

var (
	_ core.Container = (*Schema)(nil)
	_ core.Hidden    = (*Schema)(nil)
)
