package diagram

import (
	"slices"

	"github.com/leapstack-labs/leaperd/pkg/core"
)

// Node wraps one entity for presentation and relationship purposes.
type Node struct {
	EntityID   string
	Name       string
	Type       core.EntityType
	Attributes []core.Attribute

	// entity is nil for nodes restored from persistent state.
	entity core.Entity

	associations []*Relation // outbound: this node references the target
	references   []*Relation // inbound: recorded only when resolved with reflect
}

// RestoreNode recreates a node from persisted fields. A restored node has no
// live entity, so relations are never resolved from it again.
func RestoreNode(id, name string, typ core.EntityType, attrs []core.Attribute) *Node {
	return &Node{EntityID: id, Name: name, Type: typ, Attributes: attrs}
}

// Entity returns the wrapped entity, or nil for a restored node.
func (n *Node) Entity() core.Entity {
	return n.entity
}

// Associations returns the outbound relations.
func (n *Node) Associations() []*Relation {
	return slices.Clone(n.associations)
}

// References returns the inbound relations recorded on this node.
func (n *Node) References() []*Relation {
	return slices.Clone(n.references)
}

// PrimaryKey returns the names of the primary key attributes.
func (n *Node) PrimaryKey() []string {
	var pk []string
	for _, a := range n.Attributes {
		if a.PrimaryKey {
			pk = append(pk, a.Name)
		}
	}
	return pk
}

// AddAssociation records r as an outbound relation of n. It returns false if
// an equal relation is already recorded.
func (n *Node) AddAssociation(r *Relation) bool {
	if containsRelation(n.associations, r) {
		return false
	}
	n.associations = append(n.associations, r)
	return true
}

// AddReference records r as an inbound relation of n.
func (n *Node) AddReference(r *Relation) bool {
	if containsRelation(n.references, r) {
		return false
	}
	n.references = append(n.references, r)
	return true
}

// Relation is a directed reference from one node to another.
type Relation struct {
	Name          string
	Source        *Node
	Target        *Node
	SourceColumns []string
	TargetColumns []string
}

// Key identifies the relation within a diagram.
func (r *Relation) Key() string {
	return r.Source.EntityID + "/" + r.Name + "->" + r.Target.EntityID
}

func containsRelation(list []*Relation, r *Relation) bool {
	key := r.Key()
	return slices.ContainsFunc(list, func(x *Relation) bool {
		return x.Key() == key
	})
}
