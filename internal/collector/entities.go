// Package collector turns a set of catalog roots into diagram nodes.
//
// Collection runs in two phases. Phase one walks the catalog depth-first and
// gathers every reachable entity exactly once, honouring the data source's
// name filters. Phase two wraps each new entity in a node and, once every
// node of the run is known, resolves relations between them.
//
// Cancellation is polled through the context at every loop iteration. A
// cancelled run returns what it has gathered so far without an error.
package collector

import (
	"context"
	"errors"

	"github.com/leapstack-labs/leaperd/pkg/core"
)

// EntitySet is a set of entities keyed by ID that remembers first-discovery order.
type EntitySet struct {
	index    map[string]struct{}
	entities []core.Entity
}

// NewEntitySet creates an empty set.
func NewEntitySet() *EntitySet {
	return &EntitySet{index: make(map[string]struct{})}
}

// Add inserts e unless an entity with the same ID is present.
func (s *EntitySet) Add(e core.Entity) bool {
	id := e.ID()
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.entities = append(s.entities, e)
	return true
}

// Has reports whether an entity with the ID is present.
func (s *EntitySet) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of entities.
func (s *EntitySet) Len() int {
	return len(s.entities)
}

// Entities returns the entities in discovery order.
func (s *EntitySet) Entities() []core.Entity {
	out := make([]core.Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// IDs returns the entity IDs in discovery order.
func (s *EntitySet) IDs() []string {
	ids := make([]string, len(s.entities))
	for i, e := range s.entities {
		ids[i] = e.ID()
	}
	return ids
}

// CollectEntities walks roots depth-first and returns every reachable entity.
//
// Folders are descended through their members. Entities are added. Any root
// that is also a container is descended through its typed children, which
// are filtered by name before their kind is considered. Entities found inside
// containers are terminal.
//
// On cancellation the partial set is returned with a nil error. On a catalog
// failure the error is a *core.AccessError and the set holds what was
// gathered before it.
func CollectEntities(ctx context.Context, roots []core.Object) (*EntitySet, error) {
	set := NewEntitySet()
	err := collectRoots(ctx, roots, set)
	if err != nil && ctx.Err() != nil {
		// the failure is the cancellation surfacing through the catalog
		err = nil
	}
	return set, err
}

func collectRoots(ctx context.Context, roots []core.Object, set *EntitySet) error {
	for _, root := range roots {
		if ctx.Err() != nil {
			return nil
		}
		kind := root.Kind()

		if folder, ok := root.(core.Folder); ok && kind.Has(core.KindFolder) {
			children, err := folder.ChildrenObjects(ctx)
			if err != nil {
				return accessError("list folder", root, err)
			}
			if err := collectRoots(ctx, children, set); err != nil {
				return err
			}
		}
		if entity, ok := root.(core.Entity); ok && kind.Has(core.KindEntity) {
			set.Add(entity)
		}
		if container, ok := root.(core.Container); ok && kind.Has(core.KindContainer) {
			if err := collectContainer(ctx, container, set); err != nil {
				return err
			}
		}
	}
	return nil
}

func collectContainer(ctx context.Context, container core.Container, set *EntitySet) error {
	if ctx.Err() != nil {
		return nil
	}
	if err := container.CacheStructure(ctx, core.StructAll); err != nil {
		return accessError("cache structure", container, err)
	}
	if ctx.Err() != nil {
		return nil
	}

	children, err := container.Children(ctx)
	if err != nil {
		return accessError("list children", container, err)
	}
	if len(children) == 0 {
		return nil
	}

	var filter core.ObjectFilter
	if source := container.DataSource(); source != nil {
		filter = source.ObjectFilter(container.ChildType(), container, true)
	}

	for _, child := range children {
		if ctx.Err() != nil {
			break
		}
		if filter != nil && !filter.Matches(child.Name()) {
			continue
		}

		kind := child.Kind()
		if entity, ok := child.(core.Entity); ok && kind.Has(core.KindEntity) {
			set.Add(entity)
		} else if sub, ok := child.(core.Container); ok && kind.Has(core.KindContainer) {
			if err := collectContainer(ctx, sub, set); err != nil {
				return err
			}
		}
	}
	return nil
}

// accessError wraps err in a *core.AccessError unless it already is one.
func accessError(op string, obj core.Object, err error) error {
	var ae *core.AccessError
	if errors.As(err, &ae) {
		return err
	}
	return &core.AccessError{Op: op, Object: obj.Name(), Err: err}
}
