package diagram

// NodeMap maps entity IDs to nodes, preserving insertion order.
// An entity appears at most once as a key.
type NodeMap struct {
	index map[string]*Node
	order []string
}

// NewNodeMap creates an empty map.
func NewNodeMap() *NodeMap {
	return &NodeMap{index: make(map[string]*Node)}
}

// Get returns the node for an entity ID.
func (m *NodeMap) Get(entityID string) (*Node, bool) {
	n, ok := m.index[entityID]
	return n, ok
}

// Has reports whether the entity ID is a key.
func (m *NodeMap) Has(entityID string) bool {
	_, ok := m.index[entityID]
	return ok
}

// Put inserts n under its entity ID. It returns false and leaves the map
// unchanged if the ID is already present.
func (m *NodeMap) Put(n *Node) bool {
	if _, exists := m.index[n.EntityID]; exists {
		return false
	}
	m.index[n.EntityID] = n
	m.order = append(m.order, n.EntityID)
	return true
}

// Len returns the number of entries.
func (m *NodeMap) Len() int {
	return len(m.order)
}

// Nodes returns the nodes in insertion order.
func (m *NodeMap) Nodes() []*Node {
	nodes := make([]*Node, 0, len(m.order))
	for _, id := range m.order {
		nodes = append(nodes, m.index[id])
	}
	return nodes
}

// Clone returns a shallow copy: the map is new, the nodes are shared.
func (m *NodeMap) Clone() *NodeMap {
	c := &NodeMap{
		index: make(map[string]*Node, len(m.index)),
		order: make([]string, len(m.order)),
	}
	copy(c.order, m.order)
	for id, n := range m.index {
		c.index[id] = n
	}
	return c
}
