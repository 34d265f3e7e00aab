package diagram

import (
	"context"
	"fmt"
)

// AddRelations resolves the associations of n's entity against nodes and
// records one outbound relation per association whose target is present.
// Associations pointing at entities missing from nodes are skipped. With
// reflect the relation is also recorded as a reference on the target node.
//
// It returns the number of relations added. The error reports only a failure
// to read the associations; callers log it and carry on.
func AddRelations(ctx context.Context, n *Node, nodes *NodeMap, reflect bool) (int, error) {
	if n.entity == nil {
		return 0, nil
	}

	assocs, err := n.entity.Associations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read associations of %s: %w", n.EntityID, err)
	}

	added := 0
	for _, a := range assocs {
		target, ok := nodes.Get(a.ReferencedEntityID)
		if !ok {
			continue
		}
		r := &Relation{
			Name:          a.Name,
			Source:        n,
			Target:        target,
			SourceColumns: a.Columns,
			TargetColumns: a.ReferencedColumns,
		}
		if !n.AddAssociation(r) {
			continue
		}
		added++
		if reflect {
			target.AddReference(r)
		}
	}
	return added, nil
}
