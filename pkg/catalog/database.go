package catalog

import (
	"context"
	"slices"

	"github.com/leapstack-labs/leaperd/pkg/core"
)

// Database is the root container of a data source. Its children are schemas.
type Database struct {
	name    string
	source  core.DataSource
	schemas lazy[[]core.Object]
	cache   Cacher
}

// NewDatabase creates an empty database owned by source.
// A nil source means no filters apply.
func NewDatabase(name string, source core.DataSource) *Database {
	return &Database{name: name, source: source}
}

// Name returns the database name.
func (d *Database) Name() string { return d.name }

// Kind reports the database as a container.
func (d *Database) Kind() core.Kind { return core.KindContainer }

// ChildType returns the schema type tag.
func (d *Database) ChildType() core.TypeTag { return core.TypeSchema }

// DataSource returns the owning data source.
func (d *Database) DataSource() core.DataSource { return d.source }

// AddSchema appends a new schema to the database.
func (d *Database) AddSchema(name string) *Schema {
	s := NewSchema(d, name)
	d.schemas.update(func(items []core.Object) []core.Object {
		return append(items, s)
	})
	return s
}

// SetLoader installs a loader that lists the schemas on first access.
func (d *Database) SetLoader(load Loader) {
	d.schemas.setLoader(load)
}

// SetCacher installs the bulk-load hook run by CacheStructure.
func (d *Database) SetCacher(cache Cacher) {
	d.cache = cache
}

// CacheStructure runs the cache hook, if any, and loads the schema list.
func (d *Database) CacheStructure(ctx context.Context, scope core.StructScope) error {
	if d.cache != nil {
		if err := d.cache(ctx, scope); err != nil {
			return &core.AccessError{Op: "cache structure", Object: d.name, Err: err}
		}
	}
	_, err := d.Children(ctx)
	return err
}

// Children lists the schemas.
func (d *Database) Children(ctx context.Context) ([]core.Object, error) {
	items, err := d.schemas.get(ctx)
	if err != nil {
		return nil, &core.AccessError{Op: "list children", Object: d.name, Err: err}
	}
	return slices.Clone(items), nil
}

// Schema returns a schema by name. It triggers loading if needed.
func (d *Database) Schema(ctx context.Context, name string) (*Schema, error) {
	children, err := d.Children(ctx)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if s, ok := child.(*Schema); ok && s.name == name {
			return s, nil
		}
	}
	return nil, nil
}

var _ core.Container = (*Database)(nil)
