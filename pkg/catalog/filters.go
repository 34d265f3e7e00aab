package catalog

import (
	"fmt"

	"github.com/leapstack-labs/leaperd/internal/filter"
	"github.com/leapstack-labs/leaperd/pkg/core"
)

// Filters is a core.DataSource backed by name masks configured per child type.
// Tables and views share the "table" masks.
type Filters struct {
	masks map[core.TypeTag]*filter.Mask
}

// NewFilters compiles the masks in cfg, keyed by type tag.
// Empty configurations are skipped.
func NewFilters(cfg map[string]core.FilterConfig) (*Filters, error) {
	f := &Filters{masks: make(map[core.TypeTag]*filter.Mask)}
	for typ, fc := range cfg {
		if fc.IsEmpty() {
			continue
		}
		m, err := filter.New(fc)
		if err != nil {
			return nil, fmt.Errorf("filter for %s: %w", typ, err)
		}
		f.masks[core.TypeTag(typ)] = m
	}
	return f, nil
}

// ObjectFilter returns the mask for childType, or nil.
func (f *Filters) ObjectFilter(childType core.TypeTag, _ core.Container, _ bool) core.ObjectFilter {
	if f == nil {
		return nil
	}
	if m, ok := f.masks[childType]; ok {
		return m
	}
	return nil
}

var _ core.DataSource = (*Filters)(nil)
