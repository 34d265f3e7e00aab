package diagram

import (
	"slices"
	"sort"
)

// RelationIndex is a bidirectional index over the relations of a diagram.
// Foreign key graphs may contain cycles, so layout works on strongly
// connected components: every cycle collapses into one unit.
type RelationIndex struct {
	ids        []string
	references map[string][]string // source -> targets
	referenced map[string][]string // target -> sources
}

// NewRelationIndex indexes the nodes and outbound relations of d.
func NewRelationIndex(d *Diagram) *RelationIndex {
	x := &RelationIndex{
		references: make(map[string][]string),
		referenced: make(map[string][]string),
	}
	for _, n := range d.Nodes() {
		x.ids = append(x.ids, n.EntityID)
		x.references[n.EntityID] = []string{}
		x.referenced[n.EntityID] = []string{}
	}
	for _, r := range d.Relations() {
		x.addEdge(r.Source.EntityID, r.Target.EntityID)
	}
	return x
}

func (x *RelationIndex) addEdge(source, target string) {
	if _, ok := x.references[target]; !ok {
		return
	}
	if !slices.Contains(x.references[source], target) {
		x.references[source] = append(x.references[source], target)
	}
	if !slices.Contains(x.referenced[target], source) {
		x.referenced[target] = append(x.referenced[target], source)
	}
}

// References returns the entities that id references.
func (x *RelationIndex) References(id string) []string {
	return slices.Clone(x.references[id])
}

// ReferencedBy returns the entities that reference id.
func (x *RelationIndex) ReferencedBy(id string) []string {
	return slices.Clone(x.referenced[id])
}

// NodeCount returns the number of indexed entities.
func (x *RelationIndex) NodeCount() int {
	return len(x.ids)
}

// EdgeCount returns the number of distinct source/target pairs.
func (x *RelationIndex) EdgeCount() int {
	count := 0
	for _, targets := range x.references {
		count += len(targets)
	}
	return count
}

// HasCycle reports whether relations form a cycle longer than a
// self-reference, and returns one such cycle.
func (x *RelationIndex) HasCycle() (bool, []string) {
	for _, comp := range x.Components() {
		if len(comp) > 1 {
			return true, comp
		}
	}
	return false, nil
}

// Components returns the strongly connected components, each sorted, in
// reverse topological order: a component only references components listed
// before it.
func (x *RelationIndex) Components() [][]string {
	index := 0
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var comps [][]string

	var connect func(id string)
	connect = func(id string) {
		indices[id] = index
		lowlink[id] = index
		index++
		stack = append(stack, id)
		onStack[id] = true

		for _, next := range x.references[id] {
			if _, seen := indices[next]; !seen {
				connect(next)
				lowlink[id] = min(lowlink[id], lowlink[next])
			} else if onStack[next] {
				lowlink[id] = min(lowlink[id], indices[next])
			}
		}

		if lowlink[id] == indices[id] {
			var comp []string
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[top] = false
				comp = append(comp, top)
				if top == id {
					break
				}
			}
			sort.Strings(comp)
			comps = append(comps, comp)
		}
	}

	for _, id := range x.sortedIDs() {
		if _, seen := indices[id]; !seen {
			connect(id)
		}
	}
	return comps
}

// Levels groups entities into layout tiers. Level 0 holds entities that
// reference nothing outside their own cycle; every other entity sits one
// level above the highest entity it references. Each level is sorted.
func (x *RelationIndex) Levels() [][]string {
	comps := x.Components()
	compOf := make(map[string]int, len(x.ids))
	for i, comp := range comps {
		for _, id := range comp {
			compOf[id] = i
		}
	}

	// components come out referenced-first, so one forward pass suffices
	compLevel := make([]int, len(comps))
	maxLevel := -1
	for i, comp := range comps {
		level := 0
		for _, id := range comp {
			for _, target := range x.references[id] {
				if t := compOf[target]; t != i {
					level = max(level, compLevel[t]+1)
				}
			}
		}
		compLevel[i] = level
		maxLevel = max(maxLevel, level)
	}

	levels := make([][]string, maxLevel+1)
	for i, comp := range comps {
		levels[compLevel[i]] = append(levels[compLevel[i]], comp...)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels
}

// Upstream returns every entity that id references, directly or transitively.
func (x *RelationIndex) Upstream(id string) []string {
	return x.walk(id, x.references)
}

// Downstream returns every entity that references id, directly or transitively.
func (x *RelationIndex) Downstream(id string) []string {
	return x.walk(id, x.referenced)
}

func (x *RelationIndex) walk(start string, edges map[string][]string) []string {
	seen := make(map[string]bool)

	var visit func(id string)
	visit = func(id string) {
		for _, next := range edges[id] {
			if !seen[next] {
				seen[next] = true
				visit(next)
			}
		}
	}
	visit(start)
	delete(seen, start)

	result := make([]string, 0, len(seen))
	for id := range seen {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// Roots returns entities that reference no other entity.
func (x *RelationIndex) Roots() []string {
	return x.filterIDs(func(id string) bool {
		return !hasOther(x.references[id], id)
	})
}

// Leaves returns entities no other entity references.
func (x *RelationIndex) Leaves() []string {
	return x.filterIDs(func(id string) bool {
		return !hasOther(x.referenced[id], id)
	})
}

func (x *RelationIndex) filterIDs(keep func(string) bool) []string {
	var out []string
	for _, id := range x.sortedIDs() {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}

func (x *RelationIndex) sortedIDs() []string {
	ids := slices.Clone(x.ids)
	sort.Strings(ids)
	return ids
}

// hasOther reports whether list holds an ID other than self.
func hasOther(list []string, self string) bool {
	for _, id := range list {
		if id != self {
			return true
		}
	}
	return false
}
