package diagram

import (
	"testing"

	"github.com/leapstack-labs/leaperd/pkg/core"
	"github.com/stretchr/testify/assert"
)

// linked builds a diagram of restored nodes joined by the given source->target pairs.
func linked(ids []string, edges [][2]string) *Diagram {
	d := New("idx")
	nodes := make(map[string]*Node)
	for _, id := range ids {
		nodes[id] = RestoreNode(id, id, core.EntityTable, nil)
	}
	for _, e := range edges {
		nodes[e[0]].AddAssociation(&Relation{Name: "fk_" + e[0] + "_" + e[1], Source: nodes[e[0]], Target: nodes[e[1]]})
	}
	for _, id := range ids {
		d.Merge([]*Node{nodes[id]})
	}
	return d
}

func TestRelationIndex_Basics(t *testing.T) {
	// orders -> customers, items -> orders, items -> products
	x := NewRelationIndex(linked(
		[]string{"customers", "orders", "items", "products"},
		[][2]string{{"orders", "customers"}, {"items", "orders"}, {"items", "products"}},
	))

	assert.Equal(t, 4, x.NodeCount())
	assert.Equal(t, 3, x.EdgeCount())
	assert.Equal(t, []string{"orders", "products"}, x.References("items"))
	assert.Equal(t, []string{"items"}, x.ReferencedBy("orders"))
	assert.Equal(t, []string{"customers", "products"}, x.Roots())
	assert.Equal(t, []string{"items"}, x.Leaves())
	assert.Equal(t, []string{"customers", "orders", "products"}, x.Upstream("items"))
	assert.Equal(t, []string{"items", "orders"}, x.Downstream("customers"))

	hasCycle, _ := x.HasCycle()
	assert.False(t, hasCycle)

	assert.Equal(t, [][]string{
		{"customers", "products"},
		{"orders"},
		{"items"},
	}, x.Levels())
}

func TestRelationIndex_CycleCollapsesIntoOneLevel(t *testing.T) {
	// employees <-> departments, projects -> departments
	x := NewRelationIndex(linked(
		[]string{"employees", "departments", "projects"},
		[][2]string{{"employees", "departments"}, {"departments", "employees"}, {"projects", "departments"}},
	))

	hasCycle, cycle := x.HasCycle()
	assert.True(t, hasCycle)
	assert.Equal(t, []string{"departments", "employees"}, cycle)

	assert.Equal(t, [][]string{
		{"departments", "employees"},
		{"projects"},
	}, x.Levels())
}

func TestRelationIndex_SelfReference(t *testing.T) {
	x := NewRelationIndex(linked(
		[]string{"employees"},
		[][2]string{{"employees", "employees"}},
	))

	hasCycle, _ := x.HasCycle()
	assert.False(t, hasCycle, "self references are not cycles")
	assert.Equal(t, []string{"employees"}, x.Roots())
	assert.Equal(t, []string{"employees"}, x.Leaves())
	assert.Equal(t, [][]string{{"employees"}}, x.Levels())
	assert.Empty(t, x.Upstream("employees"))
}

func TestRelationIndex_Empty(t *testing.T) {
	x := NewRelationIndex(New("empty"))
	assert.Empty(t, x.Levels())
	assert.Empty(t, x.Roots())
	assert.Zero(t, x.EdgeCount())
}
