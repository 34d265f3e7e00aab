// Package diagram provides the diagram-facing model built from catalog
// entities: nodes, relations, the entity-to-node map, and the relation index
// used for layout.
//
// A Diagram is not safe for concurrent mutation. Callers run one collection
// per diagram at a time and publish its result with Merge.
package diagram

import "fmt"

// AttributeVisibility controls which attributes a node carries.
type AttributeVisibility string

// Attribute visibility modes.
const (
	AttributesAll  AttributeVisibility = "all"
	AttributesKeys AttributeVisibility = "keys"
	AttributesNone AttributeVisibility = "none"
)

// ParseAttributeVisibility validates a visibility name. Empty means all.
func ParseAttributeVisibility(s string) (AttributeVisibility, error) {
	switch v := AttributeVisibility(s); v {
	case "":
		return AttributesAll, nil
	case AttributesAll, AttributesKeys, AttributesNone:
		return v, nil
	default:
		return "", fmt.Errorf("unknown attribute visibility %q (expected all, keys or none)", s)
	}
}

// Diagram is a named set of nodes that persists across collection runs.
type Diagram struct {
	name       string
	visibility AttributeVisibility
	nodes      *NodeMap
}

// New creates an empty diagram.
func New(name string) *Diagram {
	return &Diagram{name: name, visibility: AttributesAll, nodes: NewNodeMap()}
}

// Name returns the diagram name.
func (d *Diagram) Name() string { return d.name }

// AttributeVisibility returns the attribute visibility mode.
func (d *Diagram) AttributeVisibility() AttributeVisibility { return d.visibility }

// SetAttributeVisibility sets the attribute visibility mode for nodes built later.
func (d *Diagram) SetAttributeVisibility(v AttributeVisibility) { d.visibility = v }

// NodeMap returns a copy of the diagram's node map, used to seed a collection run.
func (d *Diagram) NodeMap() *NodeMap {
	return d.nodes.Clone()
}

// ContainsEntity reports whether the diagram already holds a node for the entity.
func (d *Diagram) ContainsEntity(entityID string) bool {
	return d.nodes.Has(entityID)
}

// Node returns the node for an entity ID.
func (d *Diagram) Node(entityID string) (*Node, bool) {
	return d.nodes.Get(entityID)
}

// Nodes returns all nodes in the order they were added.
func (d *Diagram) Nodes() []*Node {
	return d.nodes.Nodes()
}

// Len returns the number of nodes.
func (d *Diagram) Len() int {
	return d.nodes.Len()
}

// Merge adds the nodes produced by a collection run. Nodes whose entity is
// already present are ignored. It returns the number of nodes added.
func (d *Diagram) Merge(nodes []*Node) int {
	added := 0
	for _, n := range nodes {
		if d.nodes.Put(n) {
			added++
		}
	}
	return added
}

// Relations returns every outbound relation of every node, in node order.
func (d *Diagram) Relations() []*Relation {
	var rels []*Relation
	for _, n := range d.nodes.Nodes() {
		rels = append(rels, n.associations...)
	}
	return rels
}
