package core

import "context"

// EntityType classifies a data-bearing entity.
type EntityType string

// Entity types.
const (
	EntityTable            EntityType = "table"
	EntityView             EntityType = "view"
	EntityMaterializedView EntityType = "materialized_view"
	EntitySystemTable      EntityType = "system_table"
	EntitySequence         EntityType = "sequence"
	EntityExternal         EntityType = "external"
)

// Entity is a concrete data source such as a table or a view.
// It terminates collection: its own children are never descended into.
type Entity interface {
	Object

	// ID returns the fully qualified identity of the entity (e.g. "main.orders").
	// Two entities with the same ID are the same entity.
	ID() string

	// EntityType returns the classification of the entity.
	EntityType() EntityType

	// Attributes lists the entity's columns in ordinal order.
	Attributes(ctx context.Context) ([]Attribute, error)

	// Associations lists the references this entity makes to other entities.
	Associations(ctx context.Context) ([]Association, error)
}

// Table is implemented by entities that can be views.
type Table interface {
	IsView() bool
}

// Hidden is implemented by objects that can be hidden by convention
// (system tables, internal schemas).
type Hidden interface {
	IsHidden() bool
}

// IsView reports whether obj is a table-kind entity flagged as a view.
func IsView(obj Object) bool {
	t, ok := obj.(Table)
	return ok && t.IsView()
}

// IsHidden reports whether obj is marked hidden.
func IsHidden(obj Object) bool {
	h, ok := obj.(Hidden)
	return ok && h.IsHidden()
}

// Attribute describes one column of an entity.
type Attribute struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
	Position   int    `json:"position"`
}

// Association is a reference from one entity to another, seen from the
// referencing side (a foreign key).
type Association struct {
	Name               string   `json:"name"`
	ReferencedEntityID string   `json:"referenced_entity_id"`
	Columns            []string `json:"columns"`
	ReferencedColumns  []string `json:"referenced_columns"`
}
