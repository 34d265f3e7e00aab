package core

import (
	"context"
	"strings"
)

// Kind is a set of capability flags reported by a catalog object.
// The flags are independent: an entity may also be a container.
type Kind uint8

// Capability flags.
const (
	KindFolder Kind = 1 << iota
	KindContainer
	KindEntity
)

// Has reports whether all flags in f are set.
func (k Kind) Has(f Kind) bool {
	return k&f == f
}

// String returns the flags joined with "|".
func (k Kind) String() string {
	if k == 0 {
		return "none"
	}
	var parts []string
	if k.Has(KindFolder) {
		parts = append(parts, "folder")
	}
	if k.Has(KindContainer) {
		parts = append(parts, "container")
	}
	if k.Has(KindEntity) {
		parts = append(parts, "entity")
	}
	return strings.Join(parts, "|")
}

// TypeTag names the declared child type of a container.
// Filters are configured per type tag.
type TypeTag string

// Known type tags.
const (
	TypeDatabase TypeTag = "database"
	TypeSchema   TypeTag = "schema"
	TypeFolder   TypeTag = "folder"
	TypeTable    TypeTag = "table"
)

// StructScope tells a container which parts of its structure to pre-cache.
type StructScope uint8

// Structure scopes.
const (
	StructEntities StructScope = 1 << iota
	StructAttributes
	StructAssociations

	StructAll = StructEntities | StructAttributes | StructAssociations
)

// Object is any named node of a catalog hierarchy.
// The name is stable within the object's parent.
type Object interface {
	Name() string
	Kind() Kind
}

// Folder groups arbitrary catalog objects. It has no declared child type.
type Folder interface {
	Object

	// ChildrenObjects lists the folder's members in catalog order.
	ChildrenObjects(ctx context.Context) ([]Object, error)
}

// Container lists typed children and can batch-load its structure.
type Container interface {
	Object

	// CacheStructure is a hint to load the given scope of the subtree in bulk.
	// Listing children must work whether or not it was called.
	CacheStructure(ctx context.Context, scope StructScope) error

	// Children lists the container's children in catalog order.
	Children(ctx context.Context) ([]Object, error)

	// ChildType returns the declared type of the children.
	ChildType() TypeTag

	// DataSource returns the data source that owns this container.
	DataSource() DataSource
}

// DataSource provides per-type name filters for the objects it owns.
type DataSource interface {
	// ObjectFilter returns the filter applied to children of childType under
	// parent, or nil when no filter is configured.
	ObjectFilter(childType TypeTag, parent Container, includeViews bool) ObjectFilter
}

// ObjectFilter decides whether a catalog object is visible by name.
type ObjectFilter interface {
	Matches(name string) bool
}
