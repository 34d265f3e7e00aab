package catalog

import (
	"context"
	"slices"

	"github.com/leapstack-labs/leaperd/pkg/core"
)

// Folder groups arbitrary catalog objects, e.g. a user's favorites or a
// navigator node such as "Views". It is listable both as a folder and as an
// untyped container.
type Folder struct {
	name    string
	source  core.DataSource
	members []core.Object
}

// NewFolder creates a folder holding members.
func NewFolder(name string, members ...core.Object) *Folder {
	return &Folder{name: name, members: members}
}

// Name returns the folder name.
func (f *Folder) Name() string { return f.name }

// Kind reports the folder as both a folder and a container.
func (f *Folder) Kind() core.Kind { return core.KindFolder | core.KindContainer }

// ChildType returns the folder type tag.
func (f *Folder) ChildType() core.TypeTag { return core.TypeFolder }

// DataSource returns the data source whose filters apply to the members.
func (f *Folder) DataSource() core.DataSource { return f.source }

// SetDataSource sets the data source whose filters apply to the members.
func (f *Folder) SetDataSource(source core.DataSource) { f.source = source }

// Add appends members.
func (f *Folder) Add(members ...core.Object) {
	f.members = append(f.members, members...)
}

// ChildrenObjects lists the members.
func (f *Folder) ChildrenObjects(context.Context) ([]core.Object, error) {
	return slices.Clone(f.members), nil
}

// CacheStructure is a no-op: members are always in memory.
func (f *Folder) CacheStructure(context.Context, core.StructScope) error { return nil }

// Children lists the members.
func (f *Folder) Children(ctx context.Context) ([]core.Object, error) {
	return f.ChildrenObjects(ctx)
}

var (
	_ core.Folder    = (*Folder)(nil)
	_ core.Container = (*Folder)(nil)
)
