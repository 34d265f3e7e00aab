package catalog

import (
	"context"
	"slices"

	"github.com/leapstack-labs/leaperd/pkg/core"
)

// Table is a data-bearing entity: a table, a view or another relation-like object.
type Table struct {
	schema *Schema
	name   string
	typ    core.EntityType
	hidden bool
	attrs  lazy[[]core.Attribute]
	assocs lazy[[]core.Association]
}

// NewTable creates a table that belongs to schema without adding it to the
// schema's children.
func NewTable(schema *Schema, name string, typ core.EntityType) *Table {
	if typ == "" {
		typ = core.EntityTable
	}
	return &Table{schema: schema, name: name, typ: typ}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Kind reports the table as an entity.
func (t *Table) Kind() core.Kind { return core.KindEntity }

// EntityType returns the table classification.
func (t *Table) EntityType() core.EntityType { return t.typ }

// Schema returns the owning schema.
func (t *Table) Schema() *Schema { return t.schema }

// ID returns the fully qualified table name.
func (t *Table) ID() string {
	if t.schema == nil {
		return t.name
	}
	return t.schema.ID() + "." + t.name
}

// IsView reports whether the table is a view or a materialized view.
func (t *Table) IsView() bool {
	return t.typ == core.EntityView || t.typ == core.EntityMaterializedView
}

// IsHidden reports whether the table is hidden by convention.
// System tables are always hidden.
func (t *Table) IsHidden() bool {
	return t.hidden || t.typ == core.EntitySystemTable
}

// SetHidden marks the table hidden.
func (t *Table) SetHidden(hidden bool) { t.hidden = hidden }

// AddColumn appends a column. Its position defaults to its ordinal.
func (t *Table) AddColumn(attr core.Attribute) *Table {
	t.attrs.update(func(attrs []core.Attribute) []core.Attribute {
		if attr.Position == 0 {
			attr.Position = len(attrs) + 1
		}
		return append(attrs, attr)
	})
	return t
}

// AddForeignKey appends a reference to another entity.
func (t *Table) AddForeignKey(assoc core.Association) *Table {
	t.assocs.update(func(assocs []core.Association) []core.Association {
		return append(assocs, assoc)
	})
	return t
}

// SetAttributes replaces the columns and marks them loaded.
func (t *Table) SetAttributes(attrs []core.Attribute) {
	t.attrs.set(attrs)
}

// SetAssociations replaces the foreign keys and marks them loaded.
func (t *Table) SetAssociations(assocs []core.Association) {
	t.assocs.set(assocs)
}

// SetAttributeLoader installs a loader for the columns.
func (t *Table) SetAttributeLoader(load func(ctx context.Context) ([]core.Attribute, error)) {
	t.attrs.setLoader(load)
}

// SetAssociationLoader installs a loader for the foreign keys.
func (t *Table) SetAssociationLoader(load func(ctx context.Context) ([]core.Association, error)) {
	t.assocs.setLoader(load)
}

// Attributes returns the columns in ordinal order.
func (t *Table) Attributes(ctx context.Context) ([]core.Attribute, error) {
	attrs, err := t.attrs.get(ctx)
	if err != nil {
		return nil, &core.AccessError{Op: "read attributes", Object: t.ID(), Err: err}
	}
	return slices.Clone(attrs), nil
}

// Associations returns the foreign keys.
func (t *Table) Associations(ctx context.Context) ([]core.Association, error) {
	assocs, err := t.assocs.get(ctx)
	if err != nil {
		return nil, &core.AccessError{Op: "read associations", Object: t.ID(), Err: err}
	}
	return slices.Clone(assocs), nil
}

var (
	_ core.Entity = (*Table)(nil)
	_ core.Table  = (*Table)(nil)
	_ core.Hidden = (*Table)(nil)
)
