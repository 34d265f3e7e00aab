package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaperd/pkg/core"
)

// Resolve finds the object at a slash path such as "shop/main/orders",
// starting from roots. Folders are walked through their members and
// containers through their children, loading them if needed.
func Resolve(ctx context.Context, roots []core.Object, path string) (core.Object, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("empty path")
	}

	current := roots
	var found core.Object
	for i, part := range parts {
		found = nil
		for _, obj := range current {
			if obj.Name() == part {
				found = obj
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("object %q not found", strings.Join(parts[:i+1], "/"))
		}
		if i == len(parts)-1 {
			break
		}

		children, err := listAny(ctx, found)
		if err != nil {
			return nil, err
		}
		current = children
	}
	return found, nil
}

// resolveStatic resolves a path without a context; used while building
// fixtures, where every list is already in memory.
func resolveStatic(roots []core.Object, path string) (core.Object, error) {
	return Resolve(context.Background(), roots, path)
}

func listAny(ctx context.Context, obj core.Object) ([]core.Object, error) {
	if f, ok := obj.(core.Folder); ok && obj.Kind().Has(core.KindFolder) {
		return f.ChildrenObjects(ctx)
	}
	if c, ok := obj.(core.Container); ok && obj.Kind().Has(core.KindContainer) {
		return c.Children(ctx)
	}
	return nil, nil
}
