package diagram

import (
	"context"

	"github.com/leapstack-labs/leaperd/pkg/core"
)

// Supported reports whether entities of typ can be represented as nodes.
func Supported(typ core.EntityType) bool {
	switch typ {
	case core.EntityTable, core.EntityView, core.EntityMaterializedView, core.EntitySystemTable:
		return true
	default:
		return false
	}
}

// BuildNode wraps e in a node for d. It returns nil, never an error, when the
// entity cannot be represented: an unsupported entity type or unreadable
// attributes. The node is not added to d.
func BuildNode(ctx context.Context, d *Diagram, e core.Entity) *Node {
	if e == nil || !Supported(e.EntityType()) {
		return nil
	}

	attrs, err := e.Attributes(ctx)
	if err != nil {
		return nil
	}

	return &Node{
		EntityID:   e.ID(),
		Name:       e.Name(),
		Type:       e.EntityType(),
		Attributes: visibleAttributes(ctx, d.AttributeVisibility(), e, attrs),
		entity:     e,
	}
}

func visibleAttributes(ctx context.Context, v AttributeVisibility, e core.Entity, attrs []core.Attribute) []core.Attribute {
	switch v {
	case AttributesNone:
		return nil
	case AttributesKeys:
		keys := make(map[string]bool)
		// an unreadable association list only narrows the key set
		if assocs, err := e.Associations(ctx); err == nil {
			for _, a := range assocs {
				for _, c := range a.Columns {
					keys[c] = true
				}
			}
		}
		var out []core.Attribute
		for _, a := range attrs {
			if a.PrimaryKey || keys[a.Name] {
				out = append(out, a)
			}
		}
		return out
	default:
		return attrs
	}
}
